package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type healthzResponse struct {
	Status string `json:"status"`
	Store  string `json:"config_store,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthzResponse{Status: "ok"}

	if s.configStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.configStore.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Store = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Store = "ok"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDebugConfig(w http.ResponseWriter, r *http.Request) {
	if s.bootSnapshot == nil {
		writeError(w, http.StatusNotFound, "no configuration snapshot available")
		return
	}

	snapshot := s.bootSnapshot()
	if snapshot == nil {
		writeError(w, http.StatusNotFound, "no configuration snapshot available")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHandleHealthz_NoStoreConfiguredReturnsOK(t *testing.T) {
	s := NewServer(DefaultConfig(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleHealthz_StoreUnreachableReturns503(t *testing.T) {
	s := NewServer(DefaultConfig(), stubPinger{err: context.DeadlineExceeded}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleDebugConfig_NoSnapshotReturns404(t *testing.T) {
	s := NewServer(DefaultConfig(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/debug/config", nil)
	rec := httptest.NewRecorder()
	s.handleDebugConfig(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDebugConfig_DumpsBootSnapshot(t *testing.T) {
	snapshot := &domain.ConfigSnapshot{Global: domain.GlobalSettings{DefaultThreshold: 0.6}}
	s := NewServer(DefaultConfig(), nil, func() *domain.ConfigSnapshot { return snapshot }, nil)

	req := httptest.NewRequest(http.MethodGet, "/debug/config", nil)
	rec := httptest.NewRecorder()
	s.handleDebugConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.ConfigSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Global.DefaultThreshold != 0.6 {
		t.Errorf("expected threshold 0.6, got %v", got.Global.DefaultThreshold)
	}
}

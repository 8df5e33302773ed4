package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	stdgrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driving"
	"github.com/custodia-labs/pii-detect-core/internal/requestid"
)

// Server adapts a driving.DetectionService onto the hand-registered
// gRPC service described in service_desc.go.
type Server struct {
	service driving.DetectionService
	logger  *slog.Logger
	signer  *requestid.Signer
}

// ServerOption configures optional Server behavior.
type ServerOption func(*Server)

// WithLogger attaches a logger used to record the raw cause behind
// Internal errors alongside their correlation token.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithRequestSigner attaches a Signer used to mint correlation tokens
// for Internal errors. Without one, Internal errors carry no token.
func WithRequestSigner(signer *requestid.Signer) ServerOption {
	return func(s *Server) { s.signer = signer }
}

// NewServer builds a Server around the given detection service.
func NewServer(service driving.DetectionService, opts ...ServerOption) *Server {
	s := &Server{service: service}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) detect(ctx context.Context, req *detectRequestMessage) (*detectResponseMessage, error) {
	resp, err := s.service.Detect(ctx, driving.DetectRequest{
		Text:             req.Text,
		Threshold:        float64(req.Threshold),
		FetchFreshConfig: req.FetchFreshConfig,
		SourceOverrides:  sourceOverrides(req),
	})
	if err != nil {
		return nil, s.toStatusError(err)
	}

	return &detectResponseMessage{
		Entities:   toEntityMessages(resp.Entities),
		Summary:    toInt32Map(resp.Summary),
		MaskedText: resp.MaskedText,
	}, nil
}

// sourceOverrides translates the wire's three nil-able per-family flags
// into the core's DetectorSource-keyed override map. A nil field means
// the family isn't mentioned in the map at all, so runDetectors leaves it
// to the config snapshot.
func sourceOverrides(req *detectRequestMessage) map[domain.DetectorSource]bool {
	var overrides map[domain.DetectorSource]bool
	add := func(source domain.DetectorSource, enable *bool) {
		if enable == nil {
			return
		}
		if overrides == nil {
			overrides = make(map[domain.DetectorSource]bool, 3)
		}
		overrides[source] = *enable
	}
	add(domain.SourcePattern, req.EnablePattern)
	add(domain.SourceMLTagger, req.EnableTagger)
	add(domain.SourceMLRecognizer, req.EnableRecognizer)
	return overrides
}

func (s *Server) streamDetect(req *streamDetectRequestMessage, stream stdgrpc.ServerStream) error {
	ctx := stream.Context()
	err := s.service.StreamDetect(ctx, req.Text, float64(req.Threshold), func(u driving.ChunkUpdate) error {
		return stream.SendMsg(&updateMessage{
			ChunkIndex:      int32(u.ChunkIndex),
			TotalChunks:     int32(u.TotalChunks),
			ProgressPercent: float32(u.ProgressPercent),
			EntitiesInChunk: toEntityMessages(u.EntitiesInChunk),
			Final:           u.Final,
			MaskedText:      u.MaskedText,
			Summary:         toInt32Map(u.Summary),
		})
	})
	if err != nil {
		return s.toStatusError(err)
	}
	return nil
}

func toEntityMessages(entities []domain.Entity) []entityMessage {
	out := make([]entityMessage, len(entities))
	for i, e := range entities {
		out[i] = entityMessage{
			Text:      e.Text,
			Type:      e.Type,
			TypeLabel: e.Type,
			Start:     int32(e.Start),
			End:       int32(e.End),
			Score:     float32(e.Score),
		}
	}
	return out
}

func toInt32Map(summary map[string]int) map[string]int32 {
	out := make(map[string]int32, len(summary))
	for k, v := range summary {
		out[k] = int32(v)
	}
	return out
}

// toStatusError maps the core error taxonomy onto gRPC status codes:
// InvalidInput -> INVALID_ARGUMENT, Cancelled -> CANCELLED, everything
// else -> INTERNAL. No PII from the input text, and no raw internal
// error text, is ever included in the status message; an Internal
// error instead carries an opaque correlation token that the same
// value logged server-side can be matched against.
func (s *Server) toStatusError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return grpcstatus.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrCancelled):
		return grpcstatus.Error(codes.Canceled, "request cancelled")
	default:
		return grpcstatus.Error(codes.Internal, s.internalErrorMessage(err))
	}
}

// internalErrorMessage logs the raw cause (if a logger is attached)
// and returns a caller-facing message carrying only an opaque
// correlation token (if a signer is attached).
func (s *Server) internalErrorMessage(err error) string {
	const fallback = "internal error"

	if s.signer == nil {
		if s.logger != nil {
			s.logger.Error("internal error", "error", err)
		}
		return fallback
	}

	ref := uuid.NewString()
	token, signErr := s.signer.Sign(ref)
	if signErr != nil {
		if s.logger != nil {
			s.logger.Error("internal error", "error", err, "sign_error", signErr)
		}
		return fallback
	}

	if s.logger != nil {
		s.logger.Error("internal error", "error", err, "ref", token)
	}
	return fallback + " (ref: " + token + ")"
}

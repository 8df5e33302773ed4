package grpc

import (
	"context"

	stdgrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// tokenParser validates a bearer token and returns the calling service's
// identity, or an error if the token is missing, expired, or forged.
// internal/adapters/driven/auth.Adapter.ParseToken satisfies this.
type tokenParser interface {
	ParseToken(token string) (string, error)
}

type callerIDKey struct{}

// CallerID extracts the authenticated caller's service identity from ctx,
// set by UnaryAuthInterceptor/StreamAuthInterceptor on success.
func CallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerIDKey{}).(string)
	return id, ok
}

func authenticate(ctx context.Context, parser tokenParser) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization header")
	}

	token := values[0]
	const prefix = "Bearer "
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		token = token[len(prefix):]
	}

	serviceID, err := parser.ParseToken(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
	}

	return context.WithValue(ctx, callerIDKey{}, serviceID), nil
}

// UnaryAuthInterceptor rejects unary calls lacking a valid bearer token.
func UnaryAuthInterceptor(parser tokenParser) stdgrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *stdgrpc.UnaryServerInfo, handler stdgrpc.UnaryHandler) (any, error) {
		authedCtx, err := authenticate(ctx, parser)
		if err != nil {
			return nil, err
		}
		return handler(authedCtx, req)
	}
}

// authedServerStream wraps a ServerStream to substitute the authenticated
// context returned by authenticate.
type authedServerStream struct {
	stdgrpc.ServerStream
	ctx context.Context
}

func (s *authedServerStream) Context() context.Context { return s.ctx }

// StreamAuthInterceptor rejects streaming calls lacking a valid bearer
// token before the first message is read.
func StreamAuthInterceptor(parser tokenParser) stdgrpc.StreamServerInterceptor {
	return func(srv any, ss stdgrpc.ServerStream, info *stdgrpc.StreamServerInfo, handler stdgrpc.StreamHandler) error {
		authedCtx, err := authenticate(ss.Context(), parser)
		if err != nil {
			return err
		}
		return handler(srv, &authedServerStream{ServerStream: ss, ctx: authedCtx})
	}
}

package grpc

import (
	"context"

	stdgrpc "google.golang.org/grpc"
)

// serviceName is the fully-qualified RPC service name clients dial
// against. There is no .proto file backing it — the method set below is
// the service definition, registered by hand.
const serviceName = "pii.detect.v1.DetectionService"

// serviceDesc is the hand-built equivalent of a protoc-generated
// _ServiceDesc: one unary method, one server-streaming method, both
// carried over the JSON codec registered in codec.go.
var serviceDesc = stdgrpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []stdgrpc.MethodDesc{
		{
			MethodName: "Detect",
			Handler:    detectHandler,
		},
	},
	Streams: []stdgrpc.StreamDesc{
		{
			StreamName:    "StreamDetect",
			Handler:       streamDetectHandler,
			ServerStreams: true,
		},
	},
	Metadata: "pii_detect.proto",
}

func detectHandler(srv any, ctx context.Context, dec func(any) error, interceptor stdgrpc.UnaryServerInterceptor) (any, error) {
	req := new(detectRequestMessage)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).detect(ctx, req)
	}
	info := &stdgrpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Detect"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).detect(ctx, req.(*detectRequestMessage))
	}
	return interceptor(ctx, req, info, handler)
}

func streamDetectHandler(srv any, stream stdgrpc.ServerStream) error {
	req := new(streamDetectRequestMessage)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(*Server).streamDetect(req, stream)
}

// Register attaches the detection service to grpcServer.
func Register(grpcServer *stdgrpc.Server, server *Server) {
	grpcServer.RegisterService(&serviceDesc, server)
}

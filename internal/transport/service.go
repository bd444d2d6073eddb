package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cognition.v1.Engine"

const (
	decideMethod = "/" + ServiceName + "/Decide"
	tickMethod   = "/" + ServiceName + "/Tick"
)

// EngineServer is the server side of the Engine service. Requests and
// responses are JSON objects carried as google.protobuf.Struct.
type EngineServer interface {
	Decide(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tick(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(EngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the Engine service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Decide",
			Handler:    unaryHandler(decideMethod, EngineServer.Decide),
		},
		{
			MethodName: "Tick",
			Handler:    unaryHandler(tickMethod, EngineServer.Tick),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cognition/v1/engine.proto",
}

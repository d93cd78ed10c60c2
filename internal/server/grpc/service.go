package grpc

import (
	"context"

	"github.com/dmitrijs2005/iqube/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DispatcherServer is the server API of the iqube.v1.Dispatcher service.
type DispatcherServer interface {
	Dispatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes iqube.v1.Dispatcher for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: wire.ServiceName,
	HandlerType: (*DispatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Dispatch",
			Handler:    dispatchHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "iqube/v1/dispatcher.proto",
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: wire.DispatchMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).Dispatch(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

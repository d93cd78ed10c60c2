package grpc

import (
	"context"

	"github.com/dmitrijs2005/iqube/internal/server/dispatch"
	"github.com/dmitrijs2005/iqube/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Dispatch unpacks the envelope, runs the operation and packs the Result.
// Operation-level failures travel inside the envelope with an OK status.
func (s *GRPCServer) Dispatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	operation, params := wire.DecodeRequest(req)

	res := s.dispatcher.Dispatch(ctx, operation, dispatch.Params(params))

	out, err := wire.Encode(res)
	if err != nil {
		s.logger.Error(ctx, "encoding response", "operation", operation, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

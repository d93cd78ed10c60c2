package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeaderName carries the per-call id back to the client.
const RequestIDHeaderName = "x-request-id"

// requestLogInterceptor tags each call with a request id and logs its
// outcome.
func (s *GRPCServer) requestLogInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := uuid.NewString()
	start := time.Now()

	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeaderName, requestID))

	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "rpc", "method", info.FullMethod, "request_id", requestID,
		"code", status.Code(err).String(), "duration", time.Since(start))

	return resp, err
}

// accessTokenInterceptor verifies a bearer token when one is presented and
// stores its claims in the context. A missing, malformed or unverifiable
// token leaves the context without claims; operations that need a token
// are refused in-band by the dispatcher, and login or registration with a
// stale token still works.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	if header == "" {
		return handler(ctx, req)
	}

	token, found := strings.CutPrefix(header, common.BearerPrefix)
	if !found || token == "" {
		s.logger.Debug(ctx, "ignoring malformed authorization header", "method", info.FullMethod)
		return handler(ctx, req)
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "ignoring unverifiable token", "method", info.FullMethod, "error", err)
		return handler(ctx, req)
	}

	return handler(auth.ContextWithClaims(ctx, claims), req)
}

// Package grpc exposes the Dispatcher over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server/auth"
	"github.com/dmitrijs2005/iqube/internal/server/dispatch"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address    string
	dispatcher *dispatch.Dispatcher
	tokens     *auth.TokenIssuer
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, d *dispatch.Dispatcher, tokens *auth.TokenIssuer) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		dispatcher: d,
		tokens:     tokens,
	}
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen and stops gracefully once ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestLogInterceptor, s.accessTokenInterceptor))

	srv.RegisterService(&ServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

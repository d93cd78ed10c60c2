package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/iqube/internal/common"
	"github.com/dmitrijs2005/iqube/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is the API the CLI depends on.
type Client interface {
	Call(ctx context.Context, operation string, params map[string]any) (*wire.Response, error)
	SetToken(token string)
	Close() error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	dialOpts    []grpc.DialOption

	mu    sync.RWMutex
	token string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token != "" {
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewDispatchClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewDispatchClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, dialOpts: opts}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// SetToken sets the bearer token sent with every later call; "" clears it.
func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Call runs one operation and returns its decoded envelope.
func (s *GRPCClient) Call(ctx context.Context, operation string, params map[string]any) (*wire.Response, error) {
	req, err := wire.EncodeRequest(operation, params)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, wire.DispatchMethod, req, out); err != nil {
		return nil, s.mapError(err)
	}

	resp, err := wire.DecodeResponse(out)
	if err != nil {
		return nil, errors.Join(ErrMalformedReply, err)
	}
	return resp, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.Join(ErrUnavailable, err)
	case codes.Unauthenticated:
		return errors.Join(ErrUnauthorized, err)
	}
	return err
}

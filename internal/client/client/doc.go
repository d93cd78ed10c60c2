// Package client talks to the iqube dispatch server over gRPC.
//
// GRPCClient sends {operation, params} envelopes to the single Dispatch RPC,
// attaches the bearer token of the current session through a unary
// interceptor and maps transport failures onto sentinel errors
// (ErrUnavailable, ErrUnauthorized) that callers match with errors.Is.
// Operation-level failures are not errors: they come back inside the
// decoded wire.Response.
package client

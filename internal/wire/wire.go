// Package wire defines the gRPC surface shared by server and client: one
// unary method whose request and response are google.protobuf.Struct
// envelopes.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName    = "iqube.v1.Dispatcher"
	DispatchMethod = "/" + ServiceName + "/Dispatch"
)

// Request envelope keys.
const (
	KeyOperation = "operation"
	KeyParams    = "params"
)

// ErrorBody mirrors the error object of a response envelope.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Response is the decoded response envelope.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// EncodeRequest builds {operation, params}.
func EncodeRequest(operation string, params map[string]any) (*structpb.Struct, error) {
	if params == nil {
		params = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		KeyOperation: operation,
		KeyParams:    params,
	})
}

// DecodeRequest extracts the operation name and parameter bag. Malformed
// fields decode as empty so the dispatcher can report them in-band.
func DecodeRequest(req *structpb.Struct) (string, map[string]any) {
	if req == nil {
		return "", nil
	}
	m := req.AsMap()
	operation, _ := m[KeyOperation].(string)
	params, _ := m[KeyParams].(map[string]any)
	return operation, params
}

// Encode converts any JSON-marshalable value into a Struct.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("envelope is not an object: %w", err)
	}

	return structpb.NewStruct(m)
}

// DecodeResponse parses a response envelope.
func DecodeResponse(s *structpb.Struct) (*Response, error) {
	if s == nil {
		return nil, fmt.Errorf("decode envelope: empty response")
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	resp := &Response{}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return resp, nil
}

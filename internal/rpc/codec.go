package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// jsonCodec marshals RPC messages with encoding/json instead of the
// protobuf wire format. This package builds its request/response
// types as plain Go structs (internal/rpc/wire) rather than
// protoc-generated messages, because this repository is never run
// through protoc or the Go toolchain during its build — there is no
// step that could produce a real .pb.go. Registering a codec under
// the name "proto" overrides grpc-go's own default registration
// (which requires proto.Message); this package's init() runs after
// google.golang.org/grpc's because it imports that package, so the
// override is deterministic. The server is still grpc.NewServer,
// still negotiates HTTP/2, still carries codes/status and server
// streaming — only the on-wire message encoding differs from a
// protobuf-generated service.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

func grpcUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

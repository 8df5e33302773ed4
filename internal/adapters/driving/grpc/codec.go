package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is negotiated over the wire via the application/grpc+json
// content-subtype. Clients must set grpc.CallContentSubtype(codecName);
// servers pick it up automatically once registered.
const codecName = "json"

// jsonCodec implements encoding.Codec over encoding/json. It stands in
// for generated protobuf marshaling: the wire messages in messages.go
// are plain structs, not proto.Message, so the default proto codec
// cannot carry them.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

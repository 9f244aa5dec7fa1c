// Package api defines the wire messages of the splitledger.v1 Connect services.
//
// Messages are plain Go structs serialized as JSON. JSONCodec replaces
// Connect's default protobuf-JSON codec so handlers and clients built by
// package apiconnect speak application/json (and application/connect+json).
package api

import "encoding/json"

// JSONCodec is a connect.Codec backed by encoding/json.
type JSONCodec struct{}

// Name is the codec name Connect derives content types from.
func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

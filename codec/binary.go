// Package codec implements the two record encodings spec §4.B assumes:
// a deterministic binary form for everything persisted in the KV
// engine, and a portable text form for import/export.
package codec

import (
	"bytes"
	"encoding/gob"
)

// EncodeBinary serializes v deterministically for a fixed concrete Go
// type. Protobuf and FlatBuffers schema compilers don't apply here
// since callers declare arbitrary record types at compile time without
// a codegen step (see DESIGN.md); gob is the stdlib's answer to
// "serialize an arbitrary concrete struct type without a schema" and is
// deterministic for a fixed type/field set, which is what spec §6
// requires ("fixed across versions of a given deployment").
func EncodeBinary(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBinary deserializes into v, which must be a pointer to the same
// concrete type EncodeBinary was called with.
func DecodeBinary(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

package store

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

// Payloads reuse the json struct tags of the IR so field names and
// omitempty behaviour match canonical JSON. Map keys are sorted so equal
// values always encode to equal bytes.
const payloadTag = "json"

func encodePayload(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(payloadTag)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePayload(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(payloadTag)
	return dec.Decode(v)
}

// marshalOutput encodes a synthesized output for storage.
func marshalOutput(out *ir.Output) ([]byte, error) {
	data, err := encodePayload(out)
	if err != nil {
		return nil, fmt.Errorf("marshal output: %w", err)
	}
	return data, nil
}

// unmarshalOutput decodes a stored output.
func unmarshalOutput(data []byte) (*ir.Output, error) {
	var out ir.Output
	if err := decodePayload(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal output: %w", err)
	}
	return &out, nil
}

// marshalDiagnostic encodes a rejection for storage.
func marshalDiagnostic(d *transform.Diagnostic) ([]byte, error) {
	data, err := encodePayload(d)
	if err != nil {
		return nil, fmt.Errorf("marshal diagnostic: %w", err)
	}
	return data, nil
}

// unmarshalDiagnostic decodes a stored rejection.
func unmarshalDiagnostic(data []byte) (*transform.Diagnostic, error) {
	var d transform.Diagnostic
	if err := decodePayload(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal diagnostic: %w", err)
	}
	return &d, nil
}

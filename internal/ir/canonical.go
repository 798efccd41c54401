package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
// This is the ONLY serialization used for content hashes and golden traces.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats are rejected
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalOf marshals an arbitrary JSON-taggable struct canonically by
// round-tripping it through encoding/json first.
func CanonicalOf(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return MarshalCanonical(raw)
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil, Unit:
		buf.WriteString("null")
	case Str:
		return writeCanonicalString(buf, string(val))
	case string:
		return writeCanonicalString(buf, val)
	case Int:
		fmt.Fprintf(buf, "%d", int64(val))
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case int:
		fmt.Fprintf(buf, "%d", val)
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return fmt.Errorf("floats are forbidden in canonical JSON: %s", val)
		}
		fmt.Fprintf(buf, "%d", n)
	case Bool:
		writeBool(buf, bool(val))
	case bool:
		writeBool(buf, val)
	case List:
		items := make([]any, len(val))
		for i, e := range val {
			items[i] = e
		}
		return writeCanonicalArray(buf, items)
	case []any:
		return writeCanonicalArray(buf, val)
	case Record:
		obj := make(map[string]any, len(val))
		for k, e := range val {
			obj[k] = e
		}
		return writeCanonicalObject(buf, obj)
	case map[string]any:
		return writeCanonicalObject(buf, val)
	case float64, float32:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteString("true")
		return
	}
	buf.WriteString("false")
}

func writeCanonicalArray(buf *bytes.Buffer, items []any) error {
	buf.WriteByte('[')
	for i, e := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, e); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeCanonicalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string. Only control
// characters, backslash and quote are escaped; U+2028 and U+2029 stay
// literal as RFC 8785 requires.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters, leaving an escaped backslash
// followed by "u2028" untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Any other escape is two bytes; copy both so an escaped backslash
		// is never mistaken for the start of a \u202x sequence.
		out = append(out, data[i])
		if i+1 < len(data) {
			out = append(out, data[i+1])
			i++
		}
	}
	return out
}

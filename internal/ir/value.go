package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface for runtime values flowing through
// synthesized builders in the engine. Only Unit, Str, Int, Bool, List and
// Record implement it. There is no float variant: canonical JSON of traces
// must be deterministic.
type Value interface {
	irValue()
}

// Unit is the value of `()`. It marshals as JSON null.
type Unit struct{}

func (Unit) irValue() {}

// MarshalJSON implements json.Marshaler for Unit.
func (Unit) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Str is a string value.
type Str string

func (Str) irValue() {}

// Int is an integer value. Width and signedness come from the declared
// type, never from the value.
type Int int64

func (Int) irValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) irValue() {}

// List is an ordered sequence of values (Vec<T>, arrays, tuples).
type List []Value

func (List) irValue() {}

// Record is a keyed value (structs). Use SortedKeys for iteration.
type Record map[string]Value

func (Record) irValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as RFC 8785
// requires. Go's native comparison uses UTF-8 bytes, which orders
// supplementary-plane characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON implements json.Marshaler with sorted keys.
// This is NOT canonical marshaling; use MarshalCanonical for hashing.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Unit:
		return []byte("null"), nil
	case Str:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Bool:
		return json.Marshal(bool(val))
	case List:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case Record:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// UnmarshalValue decodes JSON into a Value. Floats are rejected; null
// becomes Unit.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// FromAny converts decoded JSON or YAML data into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Unit{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return Str(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are not supported: %s", s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Int(n), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are not supported: %v", val)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			e, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = e
		}
		return list, nil
	case map[string]any:
		rec := make(Record, len(val))
		for k, elem := range val {
			e, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("record[%q]: %w", k, err)
			}
			rec[k] = e
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// ToAny converts a Value back to plain Go data for canonical marshaling.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Str:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = ToAny(e)
		}
		return out
	case Record:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = ToAny(e)
		}
		return out
	}
	return nil
}

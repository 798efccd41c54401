package engine

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/roach88/optchain/internal/ir"
)

// Instantiation maps generic type parameter names to concrete types for
// one builder instance.
type Instantiation map[string]ir.Type

// Apply substitutes instantiated parameters throughout t.
func (in Instantiation) Apply(t ir.Type) ir.Type {
	if len(in) == 0 {
		return t
	}
	if t.Kind == ir.KindPath && len(t.Segments) == 1 && len(t.Segments[0].Args) == 0 {
		if c, ok := in[t.Segments[0].Name]; ok {
			return c.Clone()
		}
	}
	t = t.Clone()
	for i := range t.Segments {
		for j, a := range t.Segments[i].Args {
			if a.Type != nil {
				t.Segments[i].Args[j].Type = in.Apply(*a.Type).Ptr()
			}
		}
	}
	if t.Elem != nil {
		t.Elem = in.Apply(*t.Elem).Ptr()
	}
	for i := range t.Elems {
		t.Elems[i] = in.Apply(t.Elems[i])
	}
	if t.Result != nil {
		t.Result = in.Apply(*t.Result).Ptr()
	}
	return t
}

var (
	signedInts   = map[string]bool{"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true}
	unsignedInts = map[string]bool{"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true}
	stringTypes  = map[string]bool{"String": true, "str": true, "Cow": true}
	listTypes    = map[string]bool{"Vec": true, "VecDeque": true, "HashSet": true, "BTreeSet": true}
	mapTypes     = map[string]bool{"HashMap": true, "BTreeMap": true}
)

// Convert performs the `Into` conversion a setter or constructor applies:
// v becomes a value of type t (after substituting in). References are
// transparent. Paths the interpreter does not model accept any value.
func Convert(v ir.Value, t ir.Type, in Instantiation) (ir.Value, error) {
	return convert(v, in.Apply(t), "")
}

func convert(v ir.Value, t ir.Type, field string) (ir.Value, error) {
	mismatch := func() (ir.Value, error) {
		return nil, newConversionError(field, t.String(), fmt.Sprintf("got %s", valueKind(v)))
	}

	switch t.Kind {
	case ir.KindRef:
		return convert(v, *t.Elem, field)
	case ir.KindTuple:
		if len(t.Elems) == 0 {
			if _, ok := v.(ir.Unit); ok {
				return v, nil
			}
			return mismatch()
		}
		l, ok := v.(ir.List)
		if !ok || len(l) != len(t.Elems) {
			return mismatch()
		}
		return convertList(l, t.Elems, field)
	case ir.KindSlice, ir.KindArray:
		l, ok := v.(ir.List)
		if !ok {
			return mismatch()
		}
		if n, err := strconv.Atoi(t.Len); err == nil && len(l) != n {
			return nil, newConversionError(field, t.String(), fmt.Sprintf("got %d elements", len(l)))
		}
		return convertEach(l, *t.Elem, field)
	case ir.KindPath:
	default:
		return v, nil
	}

	last := t.Last()
	switch name := last.Name; {
	case signedInts[name], unsignedInts[name]:
		n, ok := v.(ir.Int)
		if !ok {
			return mismatch()
		}
		if err := checkRange(int64(n), name); err != nil {
			return nil, newConversionError(field, t.String(), err.Error())
		}
		return n, nil
	case name == "bool":
		if _, ok := v.(ir.Bool); !ok {
			return mismatch()
		}
		return v, nil
	case stringTypes[name]:
		if _, ok := v.(ir.Str); !ok {
			return mismatch()
		}
		return v, nil
	case name == "Option":
		if _, ok := v.(ir.Unit); ok {
			return v, nil
		}
		if elem, ok := firstTypeArg(last); ok {
			return convert(v, elem, field)
		}
		return v, nil
	case name == "Box" || name == "Rc" || name == "Arc":
		if elem, ok := firstTypeArg(last); ok {
			return convert(v, elem, field)
		}
		return v, nil
	case listTypes[name]:
		l, ok := v.(ir.List)
		if !ok {
			return mismatch()
		}
		if elem, ok := firstTypeArg(last); ok {
			return convertEach(l, elem, field)
		}
		return l, nil
	case mapTypes[name]:
		if _, ok := v.(ir.Record); !ok {
			return mismatch()
		}
		return v, nil
	}
	return v, nil
}

func convertList(l ir.List, types []ir.Type, field string) (ir.Value, error) {
	out := make(ir.List, len(l))
	for i, item := range l {
		c, err := convert(item, types[i], field)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func convertEach(l ir.List, elem ir.Type, field string) (ir.Value, error) {
	out := make(ir.List, len(l))
	for i, item := range l {
		c, err := convert(item, elem, field)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// checkRange rejects integers that do not fit the named primitive.
// i128 and u128 are checked against the 64-bit range the interpreter holds.
func checkRange(n int64, name string) error {
	var err error
	switch name {
	case "i8":
		_, err = safecast.Conv[int8](n)
	case "i16":
		_, err = safecast.Conv[int16](n)
	case "i32":
		_, err = safecast.Conv[int32](n)
	case "u8":
		_, err = safecast.Conv[uint8](n)
	case "u16":
		_, err = safecast.Conv[uint16](n)
	case "u32":
		_, err = safecast.Conv[uint32](n)
	case "u64", "u128", "usize":
		_, err = safecast.Conv[uint64](n)
	}
	if err != nil {
		return fmt.Errorf("%d out of range for %s", n, name)
	}
	return nil
}

func firstTypeArg(seg ir.Segment) (ir.Type, bool) {
	for _, a := range seg.Args {
		if a.Type != nil && a.Assoc == "" {
			return *a.Type, true
		}
	}
	return ir.Type{}, false
}

func valueKind(v ir.Value) string {
	switch v.(type) {
	case ir.Unit:
		return "unit"
	case ir.Str:
		return "string"
	case ir.Int:
		return "integer"
	case ir.Bool:
		return "bool"
	case ir.List:
		return "list"
	case ir.Record:
		return "record"
	case nil:
		return "nothing"
	}
	return fmt.Sprintf("%T", v)
}

// maxDefaultArray is the longest array length with a Default impl.
const maxDefaultArray = 32

// ZeroValue is the value `<T as Default>::default()` produces for t.
func ZeroValue(t ir.Type, in Instantiation) (ir.Value, error) {
	return zero(in.Apply(t))
}

func zero(t ir.Type) (ir.Value, error) {
	noDefault := func() (ir.Value, error) {
		return nil, &RuntimeError{
			Code:    ErrCodeNoDefault,
			Message: fmt.Sprintf("type %s has no default value", t.String()),
			Details: map[string]string{"type": t.String()},
		}
	}
	switch t.Kind {
	case ir.KindRef:
		if t.Elem.Kind == ir.KindPath && t.Elem.Ident() == "str" {
			return ir.Str(""), nil
		}
		return noDefault()
	case ir.KindTuple:
		if len(t.Elems) == 0 {
			return ir.Unit{}, nil
		}
		return zeroEach(t.Elems)
	case ir.KindArray:
		n, err := strconv.Atoi(t.Len)
		if err != nil || n < 0 || n > maxDefaultArray {
			return noDefault()
		}
		elems := make([]ir.Type, n)
		for i := range elems {
			elems[i] = *t.Elem
		}
		return zeroEach(elems)
	case ir.KindPath:
	default:
		return noDefault()
	}

	switch name := t.Last().Name; {
	case signedInts[name], unsignedInts[name]:
		return ir.Int(0), nil
	case name == "bool":
		return ir.Bool(false), nil
	case name == "String":
		return ir.Str(""), nil
	case name == "Option":
		return ir.Unit{}, nil
	case listTypes[name]:
		return ir.List{}, nil
	case mapTypes[name]:
		return ir.Record{}, nil
	case name == "Box" || name == "Rc" || name == "Arc":
		if elem, ok := firstTypeArg(t.Last()); ok {
			return zero(elem)
		}
	}
	return noDefault()
}

func zeroEach(types []ir.Type) (ir.Value, error) {
	out := make(ir.List, len(types))
	for i, et := range types {
		v, err := zero(et)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/optchain/internal/ir"
)

// ParseType parses a single type expression.
func ParseType(src string) (ir.Type, error) {
	f, err := parseItem(src, "type _X = ", ";")
	if err != nil {
		return ir.Type{}, err
	}
	defer f.Close()

	tn := f.item.ChildByFieldName("type")
	if f.item.Type() != "type_item" || tn == nil {
		return ir.Type{}, &ParseError{Input: src, Message: "expected a type"}
	}
	return f.typ(tn)
}

func (f *fragment) typ(n *sitter.Node) (ir.Type, error) {
	switch n.Type() {
	case "type_identifier", "primitive_type", "identifier", "self", "super", "crate",
		"scoped_type_identifier", "scoped_identifier", "generic_type":
		return f.path(n)

	case "reference_type":
		elem, err := f.typ(n.ChildByFieldName("type"))
		if err != nil {
			return ir.Type{}, err
		}
		var lt string
		if l := childOfType(n, "lifetime"); l != nil {
			lt = f.content(l)
		}
		return ir.Ref(lt, childOfType(n, "mutable_specifier") != nil, elem), nil

	case "unit_type":
		return ir.UnitType(), nil

	case "tuple_type":
		elems, err := f.types(namedChildren(n))
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Tuple(elems...), nil

	case "array_type":
		elem, err := f.typ(n.ChildByFieldName("element"))
		if err != nil {
			return ir.Type{}, err
		}
		if ln := n.ChildByFieldName("length"); ln != nil {
			return ir.Type{Kind: ir.KindArray, Elem: elem.Ptr(), Len: f.content(ln)}, nil
		}
		return ir.Type{Kind: ir.KindSlice, Elem: elem.Ptr()}, nil

	case "function_type":
		if n.ChildByFieldName("trait") != nil {
			return ir.Type{}, f.errorf(n, "closure trait sugar is not supported")
		}
		ins, err := f.types(namedChildren(n.ChildByFieldName("parameters")))
		if err != nil {
			return ir.Type{}, err
		}
		t := ir.Type{Kind: ir.KindFn, Elems: ins}
		if rn := n.ChildByFieldName("return_type"); rn != nil {
			r, err := f.typ(rn)
			if err != nil {
				return ir.Type{}, err
			}
			t.Result = r.Ptr()
		}
		return t, nil

	case "abstract_type", "dynamic_type":
		bounds, err := f.bounds(n.ChildByFieldName("trait"))
		if err != nil {
			return ir.Type{}, err
		}
		kind := ir.KindDyn
		if n.Type() == "abstract_type" {
			kind = ir.KindImpl
		}
		return ir.Type{Kind: kind, Bounds: bounds}, nil

	case "bounded_type":
		// `dyn A + B` may parse as a bounded type whose leftmost operand is
		// the trait object.
		ops := flattenBounded(n)
		head := ops[0]
		if head.Type() != "abstract_type" && head.Type() != "dynamic_type" {
			return ir.Type{}, f.errorf(n, "bare trait object; use dyn or impl")
		}
		t, err := f.typ(head)
		if err != nil {
			return ir.Type{}, err
		}
		for _, op := range ops[1:] {
			b, err := f.bound(op)
			if err != nil {
				return ir.Type{}, err
			}
			t.Bounds = append(t.Bounds, b)
		}
		return t, nil
	}
	return ir.Type{}, f.errorf(n, "unsupported type %s", n.Type())
}

func (f *fragment) types(nodes []*sitter.Node) ([]ir.Type, error) {
	var out []ir.Type
	for _, n := range nodes {
		t, err := f.typ(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// path lowers identifiers, scoped paths and generic types to a KindPath.
func (f *fragment) path(n *sitter.Node) (ir.Type, error) {
	segs, err := f.segments(n)
	if err != nil {
		return ir.Type{}, err
	}
	return ir.Type{Kind: ir.KindPath, Segments: segs}, nil
}

func (f *fragment) segments(n *sitter.Node) ([]ir.Segment, error) {
	switch n.Type() {
	case "type_identifier", "primitive_type", "identifier", "self", "super", "crate":
		return []ir.Segment{{Name: f.content(n)}}, nil

	case "scoped_type_identifier", "scoped_identifier":
		var segs []ir.Segment
		if pn := n.ChildByFieldName("path"); pn != nil {
			var err error
			if segs, err = f.segments(pn); err != nil {
				return nil, err
			}
		}
		return append(segs, ir.Segment{Name: f.content(n.ChildByFieldName("name"))}), nil

	case "generic_type":
		segs, err := f.segments(n.ChildByFieldName("type"))
		if err != nil {
			return nil, err
		}
		args, err := f.genericArgs(n.ChildByFieldName("type_arguments"))
		if err != nil {
			return nil, err
		}
		segs[len(segs)-1].Args = args
		return segs, nil
	}
	return nil, f.errorf(n, "expected path, found %s", n.Type())
}

func (f *fragment) genericArgs(n *sitter.Node) ([]ir.GenericArg, error) {
	var args []ir.GenericArg
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "lifetime":
			args = append(args, ir.LifetimeArg(f.content(c)))
		case "type_binding":
			t, err := f.typ(c.ChildByFieldName("type"))
			if err != nil {
				return nil, err
			}
			args = append(args, ir.GenericArg{Assoc: f.content(c.ChildByFieldName("name")), Type: t.Ptr()})
		case "trait_bounds":
			return nil, f.errorf(c, "bounds in generic arguments are not supported")
		default:
			t, err := f.typ(c)
			if err != nil {
				return nil, err
			}
			args = append(args, ir.TypeArg(t))
		}
	}
	return args, nil
}

// bounds lowers a `A + B + 'a` operand chain, a trait_bounds list, or a
// single bound.
func (f *fragment) bounds(n *sitter.Node) ([]ir.Bound, error) {
	if n == nil {
		return nil, nil
	}
	var ops []*sitter.Node
	if n.Type() == "trait_bounds" {
		for _, c := range namedChildren(n) {
			ops = append(ops, flattenBounded(c)...)
		}
	} else {
		ops = flattenBounded(n)
	}

	out := make([]ir.Bound, 0, len(ops))
	for _, op := range ops {
		b, err := f.bound(op)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fragment) bound(n *sitter.Node) (ir.Bound, error) {
	if n.Type() == "lifetime" {
		return ir.Bound{Lifetime: f.content(n)}, nil
	}
	t, err := f.typ(n)
	if err != nil {
		return ir.Bound{}, err
	}
	if t.Kind != ir.KindPath {
		return ir.Bound{}, f.errorf(n, "trait bound must be a path")
	}
	return ir.TraitBound(t), nil
}

// flattenBounded returns the operands of a left-nested bounded_type.
func flattenBounded(n *sitter.Node) []*sitter.Node {
	if n.Type() != "bounded_type" {
		return []*sitter.Node{n}
	}
	var out []*sitter.Node
	for _, c := range namedChildren(n) {
		out = append(out, flattenBounded(c)...)
	}
	return out
}

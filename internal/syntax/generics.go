package syntax

import (
	"errors"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/optchain/internal/ir"
)

// ParseGenerics parses a parameter list such as `<'a, T: Copy + 'a = u8>`.
// The angle brackets are optional. An empty list yields empty generics.
func ParseGenerics(src string) (ir.Generics, error) {
	var g ir.Generics
	inner := strings.TrimSpace(src)
	prefix, suffix := "fn _f<", ">() {}"
	if strings.HasPrefix(inner, "<") {
		prefix = "fn _f"
		inner = strings.TrimSpace(inner[1:])
		if !strings.HasSuffix(inner, ">") {
			return g, &ParseError{Input: src, Offset: len(src), Message: `expected ">"`}
		}
		inner = strings.TrimSpace(strings.TrimSuffix(inner, ">"))
	}
	if inner == "" {
		return g, nil
	}

	f, err := parseItem(src, prefix, suffix)
	if err != nil {
		return g, err
	}
	defer f.Close()

	tp := f.item.ChildByFieldName("type_parameters")
	if tp == nil {
		return g, &ParseError{Input: src, Message: "expected generic parameters"}
	}
	for _, c := range namedChildren(tp) {
		if err := f.genericParam(c, &g); err != nil {
			return g, err
		}
	}
	return g, nil
}

func (f *fragment) genericParam(n *sitter.Node, g *ir.Generics) error {
	switch n.Type() {
	case "lifetime":
		g.Lifetimes = append(g.Lifetimes, ir.LifetimeParam{Name: f.content(n)})
		return nil

	case "type_identifier":
		g.Types = append(g.Types, ir.TypeParam{Name: f.content(n)})
		return nil

	case "lifetime_parameter":
		l := ir.LifetimeParam{Name: f.content(n.ChildByFieldName("name"))}
		var err error
		if l.Bounds, err = f.lifetimeBounds(n.ChildByFieldName("bounds")); err != nil {
			return err
		}
		g.Lifetimes = append(g.Lifetimes, l)
		return nil

	case "constrained_type_parameter":
		left := n.ChildByFieldName("left")
		if left.Type() == "lifetime" {
			l := ir.LifetimeParam{Name: f.content(left)}
			var err error
			if l.Bounds, err = f.lifetimeBounds(n.ChildByFieldName("bounds")); err != nil {
				return err
			}
			g.Lifetimes = append(g.Lifetimes, l)
			return nil
		}
		bounds, err := f.bounds(n.ChildByFieldName("bounds"))
		if err != nil {
			return err
		}
		g.Types = append(g.Types, ir.TypeParam{Name: f.content(left), Bounds: bounds})
		return nil

	case "optional_type_parameter":
		name := n.ChildByFieldName("name")
		if err := f.genericParam(name, g); err != nil {
			return err
		}
		return f.setDefault(n, g)

	case "type_parameter":
		bounds, err := f.bounds(n.ChildByFieldName("bounds"))
		if err != nil {
			return err
		}
		g.Types = append(g.Types, ir.TypeParam{Name: f.content(n.ChildByFieldName("name")), Bounds: bounds})
		if n.ChildByFieldName("default_type") != nil {
			return f.setDefault(n, g)
		}
		return nil
	}
	return f.errorf(n, "unsupported generic parameter %s", n.Type())
}

// setDefault attaches the default_type of n to the last type parameter.
func (f *fragment) setDefault(n *sitter.Node, g *ir.Generics) error {
	if len(g.Types) == 0 {
		return f.errorf(n, "default on a lifetime parameter")
	}
	d, err := f.typ(n.ChildByFieldName("default_type"))
	if err != nil {
		return err
	}
	g.Types[len(g.Types)-1].Default = d.Ptr()
	return nil
}

func (f *fragment) lifetimeBounds(n *sitter.Node) ([]string, error) {
	bounds, err := f.bounds(n)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(bounds))
	for i, b := range bounds {
		if b.Lifetime == "" {
			return nil, f.errorf(n, "lifetime bound %d is not a lifetime", i+1)
		}
		out = append(out, b.Lifetime)
	}
	return out, nil
}

// ParseWhere parses comma-separated predicates, with or without a leading
// `where`.
func ParseWhere(src string) ([]ir.WherePredicate, error) {
	body := strings.TrimSpace(src)
	if rest, ok := strings.CutPrefix(body, "where"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n') {
		body = strings.TrimSpace(rest)
	}
	if body == "" {
		return nil, nil
	}

	f, err := parseItem(body, "fn _f() where ", " {}")
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Input = src
			pe.Offset += strings.Index(src, body)
		}
		return nil, err
	}
	defer f.Close()

	wc := childOfType(f.item, "where_clause")
	if wc == nil {
		return nil, &ParseError{Input: src, Message: "expected where predicates"}
	}
	var preds []ir.WherePredicate
	for _, wp := range namedChildren(wc) {
		var w ir.WherePredicate
		left := wp.ChildByFieldName("left")
		if left.Type() == "lifetime" {
			w.Lifetime = f.content(left)
		} else {
			t, err := f.typ(left)
			if err != nil {
				return nil, err
			}
			w.Type = t.Ptr()
		}
		if w.Bounds, err = f.bounds(wp.ChildByFieldName("bounds")); err != nil {
			return nil, err
		}
		preds = append(preds, w)
	}
	return preds, nil
}

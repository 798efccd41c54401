package ir

import "strings"

// String renders t in surface syntax.
func (t Type) String() string {
	var sb strings.Builder
	writeType(&sb, t)
	return sb.String()
}

func writeType(sb *strings.Builder, t Type) {
	switch t.Kind {
	case KindPath:
		for i, s := range t.Segments {
			if i > 0 {
				sb.WriteString("::")
			}
			sb.WriteString(s.Name)
			writeArgs(sb, s.Args)
		}
	case KindRef:
		sb.WriteByte('&')
		if t.Lifetime != "" {
			sb.WriteString(t.Lifetime)
			sb.WriteByte(' ')
		}
		if t.Mut {
			sb.WriteString("mut ")
		}
		if t.Elem != nil {
			writeType(sb, *t.Elem)
		}
	case KindTuple:
		sb.WriteByte('(')
		for i, e := range t.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeType(sb, e)
		}
		if len(t.Elems) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case KindSlice:
		sb.WriteByte('[')
		if t.Elem != nil {
			writeType(sb, *t.Elem)
		}
		sb.WriteByte(']')
	case KindArray:
		sb.WriteByte('[')
		if t.Elem != nil {
			writeType(sb, *t.Elem)
		}
		sb.WriteString("; ")
		sb.WriteString(t.Len)
		sb.WriteByte(']')
	case KindFn:
		sb.WriteString("fn(")
		for i, e := range t.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeType(sb, e)
		}
		sb.WriteByte(')')
		if t.Result != nil && !t.Result.IsUnit() {
			sb.WriteString(" -> ")
			writeType(sb, *t.Result)
		}
	case KindImpl, KindDyn:
		sb.WriteString(string(t.Kind))
		sb.WriteByte(' ')
		sb.WriteString(FormatBounds(t.Bounds))
	}
}

func writeArgs(sb *strings.Builder, args []GenericArg) {
	if len(args) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte('>')
}

// String renders a single generic argument.
func (a GenericArg) String() string {
	if a.Lifetime != "" {
		return a.Lifetime
	}
	if a.Type == nil {
		return ""
	}
	if a.Assoc != "" {
		return a.Assoc + " = " + a.Type.String()
	}
	return a.Type.String()
}

// String renders a single bound.
func (b Bound) String() string {
	if b.Lifetime != "" {
		return b.Lifetime
	}
	if b.Trait != nil {
		return b.Trait.String()
	}
	return ""
}

// FormatBounds joins bounds with " + ".
func FormatBounds(bounds []Bound) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = b.String()
	}
	return strings.Join(parts, " + ")
}

// String renders a where predicate.
func (w WherePredicate) String() string {
	head := w.Lifetime
	if w.Type != nil {
		head = w.Type.String()
	}
	return head + ": " + FormatBounds(w.Bounds)
}

// DeclString renders the parameter list with bounds, e.g. `<'a, T: Copy>`.
// Returns "" when there are no parameters.
func (g Generics) DeclString() string {
	if !g.HasParams() {
		return ""
	}
	var parts []string
	for _, l := range g.Lifetimes {
		s := l.Name
		if len(l.Bounds) > 0 {
			s += ": " + strings.Join(l.Bounds, " + ")
		}
		parts = append(parts, s)
	}
	for _, t := range g.Types {
		s := t.Name
		if len(t.Bounds) > 0 {
			s += ": " + FormatBounds(t.Bounds)
		}
		if t.Default != nil {
			s += " = " + t.Default.String()
		}
		parts = append(parts, s)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// ArgString renders the parameter names only, e.g. `<'a, T>`.
func (g Generics) ArgString() string {
	if !g.HasParams() {
		return ""
	}
	var sb strings.Builder
	writeArgs(&sb, g.Args())
	return sb.String()
}

// WhereString renders ` where A: B, C: D`, or "" when empty.
func (g Generics) WhereString() string {
	return FormatWhere(g.Where)
}

// FormatWhere renders a where clause with a leading space, or "".
func FormatWhere(preds []WherePredicate) string {
	if len(preds) == 0 {
		return ""
	}
	parts := make([]string, len(preds))
	for i, w := range preds {
		parts[i] = w.String()
	}
	return " where " + strings.Join(parts, ", ")
}

// String renders the receiver shorthand, e.g. `&'a mut self`.
func (r ReceiverSyntax) String() string {
	var sb strings.Builder
	if r.Ref {
		sb.WriteByte('&')
		if r.Lifetime != "" {
			sb.WriteString(r.Lifetime)
			sb.WriteByte(' ')
		}
	}
	if r.Mut {
		sb.WriteString("mut ")
	}
	sb.WriteString("self")
	return sb.String()
}

// String renders the parameter as it appears in a signature, without its
// default annotation.
func (p Param) String() string {
	switch p.Pattern.Kind {
	case PatReceiver:
		if p.Receiver != nil {
			return p.Receiver.String()
		}
		return "self"
	case PatWild:
		return "_: " + p.Type.String()
	case PatOther:
		return p.Pattern.Text + ": " + p.Type.String()
	}
	name := p.Pattern.Name
	if p.Pattern.Mut {
		name = "mut " + name
	}
	return name + ": " + p.Type.String()
}

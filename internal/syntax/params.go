package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/optchain/internal/ir"
)

// parameter parses src as the only entry of a parameter list.
func parameter(src string) (*fragment, *sitter.Node, error) {
	f, err := parseItem(src, "fn _f(", ") {}")
	if err != nil {
		return nil, nil, err
	}
	params := namedChildren(f.item.ChildByFieldName("parameters"))
	if len(params) != 1 {
		f.Close()
		return nil, nil, &ParseError{Input: src, Message: "expected exactly one parameter"}
	}
	return f, params[0], nil
}

// ParseReceiver parses receiver shorthand. ok is false when src is not a
// receiver at all.
func ParseReceiver(src string) (r ir.ReceiverSyntax, ok bool, err error) {
	f, n, err := parameter(src)
	if err != nil {
		return r, false, err
	}
	defer f.Close()

	if n.Type() != "self_parameter" {
		return r, false, nil
	}
	r.Ref = childOfType(n, "&") != nil
	r.Mut = childOfType(n, "mutable_specifier") != nil
	if l := childOfType(n, "lifetime"); l != nil {
		r.Lifetime = f.content(l)
	}
	return r, true, nil
}

// ParsePattern classifies a parameter binding pattern. Anything other than
// `_` or an optionally-`mut` identifier is kept verbatim as PatOther.
func ParsePattern(src string) ir.Pattern {
	text := strings.TrimSpace(src)
	other := ir.Pattern{Kind: ir.PatOther, Text: text}

	f, n, err := parameter(text + ": ()")
	if err != nil || n.Type() != "parameter" {
		if f != nil {
			f.Close()
		}
		return other
	}
	defer f.Close()

	mut := childOfType(n, "mutable_specifier") != nil
	pat := n.ChildByFieldName("pattern")
	if pat.Type() == "mut_pattern" {
		mut = true
		kids := namedChildren(pat)
		pat = kids[len(kids)-1]
	}
	switch pat.Type() {
	case "_":
		if !mut {
			return ir.Pattern{Kind: ir.PatWild}
		}
	case "identifier", "self":
		return ir.Pattern{Kind: ir.PatIdent, Name: f.content(pat), Mut: mut}
	}
	return other
}

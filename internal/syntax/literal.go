package syntax

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/optchain/internal/ir"
)

// method calls that do not change the interpreted value
var identityMethods = map[string]bool{
	"to_owned":  true,
	"to_string": true,
	"into":      true,
	"clone":     true,
}

// zero-argument constructors with a known value
var knownCalls = map[string]ir.Value{
	"Vec::new":     ir.List{},
	"Vec::default": ir.List{},
	"String::new":  ir.Str(""),
}

var unitPaths = map[string]bool{
	"None":                       true,
	"Option::None":               true,
	"core::option::Option::None": true,
	"std::option::Option::None":  true,
}

// integer literal type suffixes, longest first
var intSuffixes = []string{"i128", "u128", "isize", "usize", "i16", "i32", "i64", "u16", "u32", "u64", "i8", "u8"}

// expression parses src as the initializer of a constant.
func expression(src string) (*fragment, *sitter.Node, error) {
	f, err := parseItem(src, "const _V: () = ", ";")
	if err != nil {
		return nil, nil, err
	}
	v := f.item.ChildByFieldName("value")
	if f.item.Type() != "const_item" || v == nil {
		f.Close()
		return nil, nil, &ParseError{Input: src, Message: "expected an expression"}
	}
	return f, v, nil
}

// EvalLiteral evaluates the literal forms the interpreter understands
// without a registered evaluator: integer, bool and string literals (with
// `.to_owned()`, `.to_string()`, `.into()` or `String::from(..)` around
// them), `()`, `None`, `Vec::new()` and `vec![]`.
func EvalLiteral(src string) (ir.Value, bool) {
	f, n, err := expression(strings.TrimSpace(src))
	if err != nil {
		return nil, false
	}
	defer f.Close()
	return f.literal(n)
}

func (f *fragment) literal(n *sitter.Node) (ir.Value, bool) {
	switch n.Type() {
	case "boolean_literal":
		return ir.Bool(f.content(n) == "true"), true

	case "integer_literal":
		v, err := parseInt(f.content(n))
		return ir.Int(v), err == nil

	case "string_literal":
		s, err := strconv.Unquote(f.content(n))
		return ir.Str(s), err == nil

	case "unit_expression":
		return ir.Unit{}, true

	case "parenthesized_expression":
		kids := namedChildren(n)
		if len(kids) != 1 {
			return nil, false
		}
		return f.literal(kids[0])

	case "unary_expression":
		kids := namedChildren(n)
		if n.Child(0).Type() != "-" || len(kids) != 1 || kids[0].Type() != "integer_literal" {
			return nil, false
		}
		v, err := parseInt("-" + f.content(kids[0]))
		return ir.Int(v), err == nil

	case "identifier", "scoped_identifier":
		if unitPaths[f.content(n)] {
			return ir.Unit{}, true
		}

	case "macro_invocation":
		tt := childOfType(n, "token_tree")
		if f.content(n.ChildByFieldName("macro")) == "vec" && tt != nil && len(namedChildren(tt)) == 0 {
			return ir.List{}, true
		}

	case "call_expression":
		return f.call(n)
	}
	return nil, false
}

func (f *fragment) call(n *sitter.Node) (ir.Value, bool) {
	fn := n.ChildByFieldName("function")
	args := namedChildren(n.ChildByFieldName("arguments"))

	if fn.Type() == "field_expression" {
		if len(args) != 0 || !identityMethods[f.content(fn.ChildByFieldName("field"))] {
			return nil, false
		}
		return f.literal(fn.ChildByFieldName("value"))
	}

	name := f.content(fn)
	if v, ok := knownCalls[name]; ok && len(args) == 0 {
		return v, true
	}
	if name == "String::from" && len(args) == 1 {
		v, ok := f.literal(args[0])
		if _, isStr := v.(ir.Str); !ok || !isStr {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// parseInt converts the text of an integer literal.
func parseInt(s string) (int64, error) {
	for _, suf := range intSuffixes {
		if strings.HasSuffix(s, suf) {
			s = strings.TrimSuffix(s, suf)
			break
		}
	}
	s = strings.ReplaceAll(s, "_", "")
	base := 10
	if digits := strings.TrimPrefix(s, "-"); len(digits) > 2 && digits[0] == '0' && strings.ContainsRune("xob", rune(digits[1])) {
		base = 0
	}
	return strconv.ParseInt(s, base, 64)
}

// IsDefaultCall reports whether src is a call to `Default::default()`.
func IsDefaultCall(src string) bool {
	f, n, err := expression(strings.TrimSpace(src))
	if err != nil {
		return false
	}
	defer f.Close()
	if n.Type() != "call_expression" || len(namedChildren(n.ChildByFieldName("arguments"))) != 0 {
		return false
	}
	switch f.content(n.ChildByFieldName("function")) {
	case "Default::default", "core::default::Default::default", "std::default::Default::default":
		return true
	}
	return false
}

package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// ParseError reports a malformed surface-syntax string. Offset is relative
// to Input.
type ParseError struct {
	Input   string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// fragment is one surface string parsed inside a synthetic Rust item.
type fragment struct {
	src    string // caller's input
	text   []byte // wrapped item handed to tree-sitter
	prefix int    // byte length of the wrapper before src
	tree   *sitter.Tree
	item   *sitter.Node
}

// parseItem wraps src as prefix+src+suffix, parses it as a Rust source file
// and returns the single top-level item. Callers must Close the fragment.
func parseItem(src, prefix, suffix string) (*fragment, error) {
	f := &fragment{
		src:    src,
		text:   []byte(prefix + src + suffix),
		prefix: len(prefix),
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, f.text)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	f.tree = tree

	root := tree.RootNode()
	if root.HasError() {
		off, msg := firstError(root, f.text)
		f.Close()
		return nil, &ParseError{Input: src, Offset: f.offset(off), Message: msg}
	}
	if root.NamedChildCount() != 1 {
		f.Close()
		return nil, &ParseError{Input: src, Offset: len(src), Message: "unexpected trailing input"}
	}
	f.item = root.NamedChild(0)
	return f, nil
}

func (f *fragment) Close() {
	if f.tree != nil {
		f.tree.Close()
	}
}

func (f *fragment) content(n *sitter.Node) string {
	return n.Content(f.text)
}

// offset maps a byte position in the wrapped item back into src.
func (f *fragment) offset(pos int) int {
	pos -= f.prefix
	if pos < 0 {
		return 0
	}
	if pos > len(f.src) {
		return len(f.src)
	}
	return pos
}

func (f *fragment) errorf(n *sitter.Node, format string, args ...any) error {
	return &ParseError{
		Input:   f.src,
		Offset:  f.offset(int(n.StartByte())),
		Message: fmt.Sprintf(format, args...),
	}
}

// firstError finds the leftmost ERROR or MISSING node under n.
func firstError(n *sitter.Node, text []byte) (int, string) {
	if n.IsMissing() {
		return int(n.StartByte()), fmt.Sprintf("missing %s", n.Type())
	}
	if n.IsError() {
		if found := strings.TrimSpace(n.Content(text)); found != "" {
			return int(n.StartByte()), fmt.Sprintf("unexpected %q", found)
		}
		return int(n.StartByte()), "syntax error"
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.HasError() || c.IsMissing() {
			return firstError(c, text)
		}
	}
	return int(n.StartByte()), "syntax error"
}

// namedChildren returns the named children of n, comments excluded.
func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "line_comment" || c.Type() == "block_comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// childOfType returns the first direct child of n with the given type.
func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

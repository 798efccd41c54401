// Package syntax reads the Rust surface syntax carried as strings in
// declaration specs: type expressions, generic parameter lists, where
// predicates, receivers, parameter patterns and literal default
// expressions.
//
// Each string is wrapped into a minimal Rust item, parsed with the
// tree-sitter Rust grammar and lowered into internal/ir values. Malformed
// input is reported as a *ParseError with an offset into the original
// string.
package syntax

// Package transform turns one annotated declaration into a builder type, its
// constructor, its setters and its terminal operation.
//
// The pipeline runs in a fixed order for every declaration:
//
//  1. CheckSignature rejects trait impls, reserved names and non-identifier
//     patterns.
//  2. ResolveSignature replaces the `Self` placeholder with the concrete
//     self type.
//  3. ClassifyReceiver extracts the receiver and its storage type.
//  4. PartitionParams splits the remaining parameters.
//  5. MergeGenerics computes the builder's generic set.
//  6. Synthesize assembles the output declarations.
//
// Each declaration is transformed independently with no shared state, so
// TransformBatch may run them in parallel. A failing declaration yields one
// *Diagnostic and no output.
package transform

import "fmt"

func builderDoc(decl string) string {
	return fmt.Sprintf("Argument builder struct for `%s`.", decl)
}

func setterDoc(field string) string {
	return fmt.Sprintf("Sets optional argument `%s`.", field)
}

func terminalDoc(decl string) string {
	return fmt.Sprintf("Executes `%s` and get the result.", decl)
}

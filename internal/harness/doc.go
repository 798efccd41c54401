// Package harness runs YAML scenarios that drive synthesized builders
// through the reference engine.
//
// A scenario names one or more CUE spec files and one declaration in them
// (`join_strings`, or `Adder::add` for a method). The harness compiles the
// specs, transforms the declaration, registers a canned body for it, then
// replays the flow steps:
//
//	construct: {receiver: {value: 22}, args: ["aaa"]}
//	set: {name: b, value: "yyy"}
//	invoke: {expect: "aaayyyccc"}
//
// A scenario may instead expect the transformation to fail with a given
// diagnostic kind, in which case no flow runs.
//
// Every run uses a fresh engine with a deterministic clock, so the trace
// is reproducible and can be compared against a golden file under
// testdata/golden.
package harness

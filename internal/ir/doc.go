// Package ir provides the intermediate representation types for optchain.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the IR the foundational
// layer with no circular dependencies.
//
// Two families of types live here:
//   - Signature IR (input): Declaration, Signature, Param, Type, Generics,
//     Enclosing. Produced by the front-end, consumed by transform.
//   - Output IR: Output, BuilderSpec, Constructor, Setter, Terminal, InnerFn.
//     Produced by transform, consumed by emit and engine.
//
// Key design constraints:
//   - Types are plain values; every transformation copies, never mutates
//     its input.
//   - Lifetimes are spelled with their leading apostrophe ("'a").
//   - All JSON tags use snake_case.
//   - Runtime values (Value) carry no floats, so canonical JSON stays
//     deterministic.
package ir

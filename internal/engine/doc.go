// Package engine is a reference interpreter for synthesized builders.
//
// It executes an ir.Output the way the emitted code would run, without
// compiling anything:
//
//  1. Construct takes the receiver and the required arguments, converting
//     each into its field type, and leaves every optional field unset.
//  2. Builder.Set overwrites one optional field. Builders are values: Set
//     returns a new builder and the last call for a field wins.
//  3. Invoke (or Spawn + Future.Await for async terminals) binds the
//     receiver, the required fields, then the optional fields in original
//     declaration order. Each unset optional field's default is evaluated
//     exactly once, at that point, and never when the field was set.
//  4. The registered body is called with the arguments in the original
//     parameter order.
//
// Every step is stamped with a monotonic sequence number from the engine's
// Clock and recorded in the trace, so a run can be compared against a
// golden file byte for byte.
package engine

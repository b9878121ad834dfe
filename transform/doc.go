// Package transform provides whole-function rewrites over the IR and the
// runner that schedules them.
//
// Passes implement FunctionPass and are applied by a Runner exactly once
// per function. Passes that recognize their own emitted instructions (such
// as PreserveOutputs) rely on that single-invocation contract; scheduling
// the same pass twice over a function is a host error.
//
// Scratch storage synthesized by passes follows the IR's default-zero
// policy: InstAlloca slots are zero-initialized, so coordinates never
// written by the source program materialize as zero.
package transform

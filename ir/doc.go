// Package ir defines a DXIL-flavored linear intermediate representation.
//
// The IR is designed to be:
//   - Linear: A function body is an ordered instruction sequence; program
//     order is sequence order, with explicit labels and branches for
//     control flow
//   - Signature-aware: Modules carry output signature tables, and pipeline
//     primitives (loadInput, storeOutput, ...) appear as calls identified
//     by opcode
//   - Transform-friendly: Instructions are referenced by identity, so a
//     rewrite can insert, redirect, and erase at precise program points
//
// # Structure
//
// The IR is organized around a Module type that contains:
//   - Stage: The shader stage the module targets
//   - Outputs / PatchConstants: Declared output signature tables
//   - Functions: All function definitions
//
// Opcode numbering and the semantics of pipeline primitives live in the
// dxop package; this package treats an opcode as an opaque identifier.
//
// # References
//
// This IR design is inspired by:
//   - DXIL specification: https://github.com/microsoft/DirectXShaderCompiler/blob/main/docs/DXIL.rst
//   - LLVM IR: https://llvm.org/docs/LangRef.html
package ir

// Package dxir provides a DXIL-flavored shader IR and transforms over it.
//
// The central transform guarantees that every output element a function
// writes is stored completely, one call per coordinate, on every exit path,
// which is what fixed-function consumers of the compiled shader require.
//
// The package provides a simple, high-level API over the pipeline as well
// as lower-level access to the individual packages (ir, sig, dxop,
// transform, binfile, disasm, interp).
//
// Example usage:
//
//	module, err := dxir.Load(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	changed, err := dxir.Transform(module)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(dxir.Print(module))
package dxir

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/dxir/binfile"
	"github.com/gogpu/dxir/disasm"
	"github.com/gogpu/dxir/dxop"
	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/transform"
)

// TransformOptions configures the Transform pipeline.
type TransformOptions struct {
	// Validate checks the module before transforming
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() TransformOptions {
	return TransformOptions{
		Validate: true,
	}
}

// Load reads a module from its JSON interchange form.
func Load(r io.Reader) (*ir.Module, error) {
	module, err := binfile.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	return module, nil
}

// Save writes a module in its JSON interchange form.
func Save(w io.Writer, module *ir.Module) error {
	if err := binfile.Encode(w, module); err != nil {
		return fmt.Errorf("save error: %w", err)
	}
	return nil
}

// Validate checks a module for structural and opcode-level correctness.
// It returns nil when the module is valid, otherwise an error joining
// every finding.
func Validate(module *ir.Module) error {
	structural, err := ir.Validate(module)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	var errs []error
	for i := range structural {
		errs = append(errs, structural[i])
	}
	errs = append(errs, dxop.Check(module)...)
	return errors.Join(errs...)
}

// Transform runs the default pass pipeline over the module using default
// options, reporting whether any function changed.
func Transform(module *ir.Module) (bool, error) {
	return TransformWithOptions(module, DefaultOptions())
}

// TransformWithOptions runs the default pass pipeline with custom options.
//
// The pipeline is:
//  1. Validate the module (if enabled)
//  2. Apply the transform passes, once per function
func TransformWithOptions(module *ir.Module, opts TransformOptions) (bool, error) {
	if opts.Validate {
		if err := Validate(module); err != nil {
			return false, err
		}
	}
	changed, err := transform.Default().Run(module)
	if err != nil {
		return changed, fmt.Errorf("transform error: %w", err)
	}
	return changed, nil
}

// Print renders a module as deterministic text.
func Print(module *ir.Module) string {
	return disasm.Print(module)
}

package transform

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/gogpu/dxir/ir"
)

// FunctionPass is a whole-function rewrite.
// Run reports whether it changed the function's structure; the flag feeds
// the host's dirty-tracking and carries no correctness meaning.
type FunctionPass interface {
	Name() string
	Run(m *ir.Module, fn *ir.Function) (bool, error)
}

// Runner applies an ordered list of passes to a module.
type Runner struct {
	passes []FunctionPass
}

// NewRunner returns a runner over the given passes.
func NewRunner(passes ...FunctionPass) *Runner {
	return &Runner{passes: passes}
}

// Default returns the standard pass pipeline.
func Default() *Runner {
	return NewRunner(PreserveOutputs{})
}

// Run applies every registered pass, in order, exactly once to every
// function of the module. It stops at the first pass error and reports
// whether any function changed.
func (r *Runner) Run(m *ir.Module) (bool, error) {
	changed := false
	for _, fn := range m.Functions {
		for _, p := range r.passes {
			c, err := p.Run(m, fn)
			if err != nil {
				return changed, fmt.Errorf("pass %s on function %s: %w", p.Name(), fn.Name, err)
			}
			if c {
				log.Debugf("pass %s rewrote function %s", p.Name(), fn.Name)
			} else {
				log.Debugf("pass %s left function %s unchanged", p.Name(), fn.Name)
			}
			changed = changed || c
		}
	}
	return changed, nil
}

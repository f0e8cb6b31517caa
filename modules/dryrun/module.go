// Package dryrun binds a stand-in implementation to every declared function
// that has no Go code yet, so a plan can be executed end to end without real
// factor code.
package dryrun

import (
	"context"
	"fmt"

	"github.com/vk/factorgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Result is what every dry-run function returns.
type Result struct {
	Function string
	Factor   string
	Deps     int
}

func (r Result) String() string {
	if r.Factor == "" {
		return r.Function
	}
	return fmt.Sprintf("%s(%s)", r.Function, r.Factor)
}

// Noop records its call and returns a Result.
func Noop(ctx context.Context, call registry.Call) (any, error) {
	return Result{Function: call.Function, Factor: call.Factor, Deps: len(call.Deps)}, nil
}

// Register binds Noop to every declared function that is still unbound. It
// must run after all other modules.
func (m *Module) Register(r *registry.Registry) {
	for _, def := range r.Definitions() {
		if !r.Bound(def.Name) {
			r.Bind(def.Name, Noop)
		}
	}
}

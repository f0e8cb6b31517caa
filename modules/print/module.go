// Package print provides the "print" catalog function. It logs the factor,
// class and dependency values it is called with and passes its input data
// through unchanged, so it can sit in any intermediate or preparation chain.
package print

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/registry"
)

// Name is the catalog function name this module binds.
const Name = "print"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Print is the Go implementation of the "print" function.
func Print(ctx context.Context, call registry.Call) (any, error) {
	logger := ctxlog.FromContext(ctx)

	// Sort keys for consistent output
	deps := make([]string, 0, len(call.Deps))
	for k := range call.Deps {
		deps = append(deps, k)
	}
	sort.Strings(deps)

	params := make([]string, 0, len(call.Params))
	for k := range call.Params {
		params = append(params, fmt.Sprintf("%s=%v", k, call.Params[k]))
	}
	sort.Strings(params)

	logger.Info("print", "factor", call.Factor, "class", call.Class, "deps", deps, "params", params, "data", fmt.Sprintf("%v", call.Data))
	return call.Data, nil
}

// Register binds Print when a catalog declares a function named "print".
func (m *Module) Register(r *registry.Registry) {
	if _, declared := r.Definition(Name); !declared || r.Bound(Name) {
		return
	}
	r.Bind(Name, Print)
}

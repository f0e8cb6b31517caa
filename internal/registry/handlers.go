package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/factorgrid/internal/catalog"
)

// Call carries the arguments of one function invocation. Which fields a
// function sees depends on its declared signature; see Invoke.
type Call struct {
	Function string
	Factor   string
	Class    string
	Params   map[string]any
	// Data is the prepared input of the factor's join-group.
	Data any
	// Deps holds the compute results of the factor's dependencies.
	Deps map[string]any
}

// Func is the Go implementation of a catalog function.
type Func func(ctx context.Context, call Call) (any, error)

// Bind registers the Go implementation of a declared function name.
// Binding a name twice is a programmer error and panics.
func (r *Registry) Bind(name string, fn Func) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("function handler with name '%s' already registered", name))
	}
	slog.Debug("Registering function handler.", "name", name)
	r.handlers[name] = fn
	r.boundOrder = append(r.boundOrder, name)
}

// Bound reports whether a Go implementation is registered for name.
func (r *Registry) Bound(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Invoke calls the function bound to name. The call is trimmed to the
// declared signature: SignatureNone functions get only Data and Deps,
// SignatureName functions also get Factor and Class, SignatureParams
// functions get everything.
func (r *Registry) Invoke(ctx context.Context, name string, call Call) (any, error) {
	def, ok := r.definitions[name]
	if !ok {
		return nil, &catalog.UnknownFunctionReferenceError{Name: name, Factor: call.Factor}
	}
	fn, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("function %q has no Go implementation bound", name)
	}

	args := Call{Function: name, Data: call.Data, Deps: call.Deps}
	switch def.Signature {
	case catalog.SignatureName:
		args.Factor, args.Class = call.Factor, call.Class
	case catalog.SignatureParams:
		args.Factor, args.Class, args.Params = call.Factor, call.Class, call.Params
	}
	return fn(ctx, args)
}

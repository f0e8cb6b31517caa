package registry

import (
	"fmt"

	"github.com/vk/factorgrid/internal/catalog"
)

// Module is the interface that all function modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the declared function manifests and the Go functions bound
// to them for a single application instance.
type Registry struct {
	definitions map[string]*catalog.FunctionDefinition
	order       []string
	handlers    map[string]Func
	boundOrder  []string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*catalog.FunctionDefinition),
		handlers:    make(map[string]Func),
	}
}

// Declare adds a function manifest. Declaring the same name twice is an error.
func (r *Registry) Declare(def *catalog.FunctionDefinition) error {
	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("function %q already declared", def.Name)
	}
	r.definitions[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// PopulateDefinitions copies the function manifests of a catalog into the
// registry for easy access during planning and execution.
func (r *Registry) PopulateDefinitions(cat *catalog.Catalog) error {
	for _, def := range cat.Functions() {
		if err := r.Declare(def); err != nil {
			return err
		}
	}
	return nil
}

// Definition returns the manifest of a function.
func (r *Registry) Definition(name string) (*catalog.FunctionDefinition, bool) {
	def, ok := r.definitions[name]
	return def, ok
}

// Definitions returns all manifests in declaration order.
func (r *Registry) Definitions() []*catalog.FunctionDefinition {
	out := make([]*catalog.FunctionDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.definitions[name])
	}
	return out
}

// Lookup resolves a function reference made by factor, requiring the
// declared kind to match. It fails with *catalog.UnknownFunctionReferenceError.
func (r *Registry) Lookup(name string, kind catalog.FunctionKind, factor string) (*catalog.FunctionDefinition, error) {
	def, ok := r.definitions[name]
	if !ok {
		return nil, &catalog.UnknownFunctionReferenceError{Name: name, Kind: kind, Factor: factor}
	}
	if def.Kind != kind {
		return nil, fmt.Errorf("%w (declared as a %s function)", &catalog.UnknownFunctionReferenceError{Name: name, Kind: kind, Factor: factor}, def.Kind)
	}
	return def, nil
}

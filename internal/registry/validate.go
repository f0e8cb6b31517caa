package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/ctxlog"
)

// ValidateCatalog checks every function reference made by the catalog's
// factors and classes against the declared manifests and returns all
// failures joined.
func (r *Registry) ValidateCatalog(ctx context.Context, cat *catalog.Catalog) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, f := range cat.Factors() {
		if _, err := r.Lookup(f.ComputeFunc, catalog.KindCompute, f.Name); err != nil {
			errs = append(errs, err)
		}
		for _, mid := range f.DependsOn.IntermediateFuncs {
			if _, err := r.Lookup(mid, catalog.KindIntermediate, f.Name); err != nil {
				errs = append(errs, err)
			}
		}
		if _, declared := cat.Class(f.Class); !declared {
			logger.Debug("Factor class has no class definition, no preparation will run.", "factor", f.Name, "class", f.Class)
		}
	}
	for _, c := range cat.Classes() {
		for _, fn := range c.Prepare {
			if _, err := r.Lookup(fn, catalog.KindPrepare, ""); err != nil {
				errs = append(errs, fmt.Errorf("class %q: %w", c.Name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// ValidateBindings performs a strict parity check between manifests and Go
// code: every name in required must be declared and bound, and every bound
// Go function must be declared by some manifest.
func (r *Registry) ValidateBindings(ctx context.Context, required []string) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, name := range required {
		if _, ok := r.definitions[name]; !ok {
			errs = append(errs, fmt.Errorf("function %q is used but not declared in any manifest", name))
			continue
		}
		if !r.Bound(name) {
			errs = append(errs, fmt.Errorf("function %q is declared but has no Go implementation bound", name))
		}
	}
	for _, name := range r.boundOrder {
		if _, ok := r.definitions[name]; !ok {
			errs = append(errs, fmt.Errorf("Go implementation bound for function %q, which is not declared in any manifest", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}
	logger.Debug("Registry validation passed.", "required", len(required), "bound", len(r.boundOrder))
	return nil
}

// Package resolver computes the complete ordered list of raw data paths each
// factor needs: its own declared paths first, then the resolved paths of each
// dependency in declaration order, with duplicates removed keeping the first
// occurrence.
package resolver

import (
	"github.com/vk/factorgrid/internal/catalog"
)

// Resolver memoizes resolved data paths per factor. It is not safe for
// concurrent use; planning drives it from a single goroutine.
type Resolver struct {
	cat   *catalog.Catalog
	cache map[string][]string
}

// New creates a resolver over cat.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{
		cat:   cat,
		cache: make(map[string][]string),
	}
}

// Resolve returns the ordered, deduplicated data paths of the named factor.
// It fails with *catalog.UnknownFactorReferenceError for undefined names and
// *catalog.DependencyCycleError when resolution re-enters a factor already on
// the current resolution path. Repeated calls return equal lists.
func (r *Resolver) Resolve(name string) ([]string, error) {
	paths, err := r.resolve(name, "", nil)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), paths...), nil
}

// resolve walks dependencies depth first. path holds the factors of the
// current call chain; it is checked before the cache so a cycle is always
// reported, even through factors resolved earlier.
func (r *Resolver) resolve(name, referencedBy string, path []string) ([]string, error) {
	for i, onPath := range path {
		if onPath == name {
			cycle := append(append([]string(nil), path[i:]...), name)
			return nil, &catalog.DependencyCycleError{Path: cycle}
		}
	}
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	def, ok := r.cat.Factor(name)
	if !ok {
		return nil, &catalog.UnknownFactorReferenceError{Name: name, ReferencedBy: referencedBy}
	}

	path = append(path, name)
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range def.DataPaths() {
		add(p)
	}
	for _, dep := range def.DependsOn.Factors {
		depPaths, err := r.resolve(dep, name, path)
		if err != nil {
			return nil, err
		}
		for _, p := range depPaths {
			add(p)
		}
	}

	r.cache[name] = out
	return out, nil
}

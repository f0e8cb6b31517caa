// Package catalogtest builds in-memory catalogs for tests.
package catalogtest

import (
	"testing"

	"github.com/vk/factorgrid/internal/catalog"
)

// Builder assembles a catalog fluently and fails the test on any add error.
type Builder struct {
	t       testing.TB
	cat     *catalog.Catalog
	skipFns map[string]struct{}
}

// New starts an empty catalog.
func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t, cat: catalog.New(), skipFns: make(map[string]struct{})}
}

// Indicator declares a data path whose columns map to themselves. Intraday
// paths get a time key in addition to symbol and date.
func (b *Builder) Indicator(path string, freq catalog.Frequency, columns ...string) *Builder {
	b.t.Helper()
	cols := make(map[string]string, len(columns))
	for _, c := range columns {
		cols[c] = c
	}
	keys := catalog.Keys{Symbol: "symbol", Date: "date"}
	if freq == catalog.Intraday {
		keys.Time = "time"
	}
	return b.IndicatorDef(&catalog.IndicatorDefinition{
		DataPath:  path,
		Frequency: freq,
		Location:  catalog.Location{Namespace: "dfs://" + path, Table: "pt"},
		Keys:      keys,
		Columns:   cols,
	})
}

// IndicatorDef declares a fully specified data path.
func (b *Builder) IndicatorDef(def *catalog.IndicatorDefinition) *Builder {
	b.t.Helper()
	if err := b.cat.AddIndicator(def); err != nil {
		b.t.Fatalf("catalogtest: %v", err)
	}
	return b
}

// Class declares a class with its preparation functions.
func (b *Builder) Class(name string, prepare ...string) *Builder {
	b.t.Helper()
	if err := b.cat.AddClass(&catalog.ClassDefinition{Name: name, Prepare: prepare}); err != nil {
		b.t.Fatalf("catalogtest: %v", err)
	}
	return b
}

// Function declares a function manifest explicitly.
func (b *Builder) Function(name string, kind catalog.FunctionKind, sig catalog.Signature) *Builder {
	b.t.Helper()
	if err := b.cat.AddFunction(&catalog.FunctionDefinition{Name: name, Kind: kind, Signature: sig}); err != nil {
		b.t.Fatalf("catalogtest: %v", err)
	}
	return b
}

// SkipFunctions keeps Build from declaring manifests for the named functions.
func (b *Builder) SkipFunctions(names ...string) *Builder {
	for _, n := range names {
		b.skipFns[n] = struct{}{}
	}
	return b
}

// FactorOption customizes a factor added with Factor.
type FactorOption func(*catalog.FactorDefinition)

// Deps sets the factor dependencies.
func Deps(names ...string) FactorOption {
	return func(f *catalog.FactorDefinition) { f.DependsOn.Factors = names }
}

// Mid sets the intermediate functions.
func Mid(funcs ...string) FactorOption {
	return func(f *catalog.FactorDefinition) { f.DependsOn.IntermediateFuncs = funcs }
}

// Reads appends a declared data path with the indicators read from it.
func Reads(path string, indicators ...string) FactorOption {
	return func(f *catalog.FactorDefinition) {
		f.Sources = append(f.Sources, catalog.Source{DataPath: path, Indicators: indicators})
	}
}

// InClass sets the factor class.
func InClass(name string) FactorOption {
	return func(f *catalog.FactorDefinition) { f.Class = name }
}

// Freq sets the declared output frequency.
func Freq(freq catalog.Frequency) FactorOption {
	return func(f *catalog.FactorDefinition) { f.Frequency = freq }
}

// Compute sets the compute function name.
func Compute(fn string) FactorOption {
	return func(f *catalog.FactorDefinition) { f.ComputeFunc = fn }
}

// Params sets the opaque factor parameters.
func Params(p map[string]any) FactorOption {
	return func(f *catalog.FactorDefinition) { f.Params = p }
}

// Factor declares a factor. Defaults: class "base", compute function
// "calc_<name>", daily output.
func (b *Builder) Factor(name string, opts ...FactorOption) *Builder {
	b.t.Helper()
	def := &catalog.FactorDefinition{
		Name:        name,
		Class:       "base",
		ComputeFunc: "calc_" + name,
		Frequency:   catalog.Daily,
	}
	for _, opt := range opts {
		opt(def)
	}
	if err := b.cat.AddFactor(def); err != nil {
		b.t.Fatalf("catalogtest: %v", err)
	}
	return b
}

// Build declares a manifest for every function referenced by the factors
// and classes (unless already declared or skipped) and returns the catalog.
func (b *Builder) Build() *catalog.Catalog {
	b.t.Helper()
	declare := func(name string, kind catalog.FunctionKind, sig catalog.Signature) {
		if _, skip := b.skipFns[name]; skip {
			return
		}
		if _, exists := b.cat.Function(name); exists {
			return
		}
		b.Function(name, kind, sig)
	}
	for _, f := range b.cat.Factors() {
		declare(f.ComputeFunc, catalog.KindCompute, catalog.SignatureParams)
		for _, mid := range f.DependsOn.IntermediateFuncs {
			declare(mid, catalog.KindIntermediate, catalog.SignatureParams)
		}
	}
	for _, c := range b.cat.Classes() {
		for _, fn := range c.Prepare {
			declare(fn, catalog.KindPrepare, catalog.SignatureNone)
		}
	}
	return b.cat
}

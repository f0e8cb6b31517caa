package catalog

import (
	"context"
	"fmt"
)

// Loader is the interface for a format-specific catalog loader.
type Loader interface {
	// Load reads every catalog file found under paths and returns the
	// assembled catalog.
	Load(ctx context.Context, paths ...string) (*Catalog, error)
}

// Catalog is the ordered, read-only collection of catalog definitions.
type Catalog struct {
	factors        map[string]*FactorDefinition
	factorOrder    []string
	factorIndex    map[string]int
	indicators     map[string]*IndicatorDefinition
	indicatorOrder []string
	classes        map[string]*ClassDefinition
	classOrder     []string
	functions      map[string]*FunctionDefinition
	functionOrder  []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		factors:     make(map[string]*FactorDefinition),
		factorIndex: make(map[string]int),
		indicators:  make(map[string]*IndicatorDefinition),
		classes:     make(map[string]*ClassDefinition),
		functions:   make(map[string]*FunctionDefinition),
	}
}

// AddFactor appends a factor definition. Names must be unique.
func (c *Catalog) AddFactor(def *FactorDefinition) error {
	if prev, exists := c.factors[def.Name]; exists {
		return duplicateError("factor", def.Name, prev.Origin, def.Origin)
	}
	c.factors[def.Name] = def
	c.factorIndex[def.Name] = len(c.factorOrder)
	c.factorOrder = append(c.factorOrder, def.Name)
	return nil
}

// AddIndicator appends an indicator definition. Data paths must be unique.
func (c *Catalog) AddIndicator(def *IndicatorDefinition) error {
	if prev, exists := c.indicators[def.DataPath]; exists {
		return duplicateError("indicator", def.DataPath, prev.Origin, def.Origin)
	}
	c.indicators[def.DataPath] = def
	c.indicatorOrder = append(c.indicatorOrder, def.DataPath)
	return nil
}

// AddClass appends a class definition. Names must be unique.
func (c *Catalog) AddClass(def *ClassDefinition) error {
	if prev, exists := c.classes[def.Name]; exists {
		return duplicateError("class", def.Name, prev.Origin, def.Origin)
	}
	c.classes[def.Name] = def
	c.classOrder = append(c.classOrder, def.Name)
	return nil
}

// AddFunction appends a function manifest. Names must be unique.
func (c *Catalog) AddFunction(def *FunctionDefinition) error {
	if prev, exists := c.functions[def.Name]; exists {
		return duplicateError("function", def.Name, prev.Origin, def.Origin)
	}
	c.functions[def.Name] = def
	c.functionOrder = append(c.functionOrder, def.Name)
	return nil
}

func duplicateError(kind, name, prevOrigin, origin string) error {
	if prevOrigin == "" && origin == "" {
		return fmt.Errorf("duplicate %s definition %q", kind, name)
	}
	return fmt.Errorf("duplicate %s definition %q (first in %s, again in %s)", kind, name, originOrInline(prevOrigin), originOrInline(origin))
}

func originOrInline(origin string) string {
	if origin == "" {
		return "<inline>"
	}
	return origin
}

// Factor looks up a factor by name.
func (c *Catalog) Factor(name string) (*FactorDefinition, bool) {
	def, ok := c.factors[name]
	return def, ok
}

// Factors returns all factor definitions in declaration order.
func (c *Catalog) Factors() []*FactorDefinition {
	out := make([]*FactorDefinition, 0, len(c.factorOrder))
	for _, name := range c.factorOrder {
		out = append(out, c.factors[name])
	}
	return out
}

// FactorNames returns all factor names in declaration order.
func (c *Catalog) FactorNames() []string {
	return append([]string(nil), c.factorOrder...)
}

// Index returns the declaration index of a factor, or -1 if it is unknown.
func (c *Catalog) Index(name string) int {
	if i, ok := c.factorIndex[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of factors.
func (c *Catalog) Len() int {
	return len(c.factorOrder)
}

// Indicator looks up the indicator definition of a data path.
func (c *Catalog) Indicator(path string) (*IndicatorDefinition, bool) {
	def, ok := c.indicators[path]
	return def, ok
}

// Indicators returns all indicator definitions in declaration order.
func (c *Catalog) Indicators() []*IndicatorDefinition {
	out := make([]*IndicatorDefinition, 0, len(c.indicatorOrder))
	for _, path := range c.indicatorOrder {
		out = append(out, c.indicators[path])
	}
	return out
}

// Class looks up a class definition.
func (c *Catalog) Class(name string) (*ClassDefinition, bool) {
	def, ok := c.classes[name]
	return def, ok
}

// Classes returns all class definitions in declaration order.
func (c *Catalog) Classes() []*ClassDefinition {
	out := make([]*ClassDefinition, 0, len(c.classOrder))
	for _, name := range c.classOrder {
		out = append(out, c.classes[name])
	}
	return out
}

// PrepareFuncs returns the preparation functions of a class. An undeclared
// class has none.
func (c *Catalog) PrepareFuncs(class string) []string {
	if def, ok := c.classes[class]; ok {
		return def.Prepare
	}
	return nil
}

// Function looks up a function manifest.
func (c *Catalog) Function(name string) (*FunctionDefinition, bool) {
	def, ok := c.functions[name]
	return def, ok
}

// Functions returns all function manifests in declaration order.
func (c *Catalog) Functions() []*FunctionDefinition {
	out := make([]*FunctionDefinition, 0, len(c.functionOrder))
	for _, name := range c.functionOrder {
		out = append(out, c.functions[name])
	}
	return out
}

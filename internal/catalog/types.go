package catalog

// Dependencies lists what a factor needs besides raw data.
type Dependencies struct {
	Factors           []string `validate:"dive,identifier"`
	IntermediateFuncs []string `validate:"dive,identifier"`
}

// Source is one raw data path declared by a factor together with the
// indicator names the factor consumes from it.
type Source struct {
	DataPath   string   `validate:"required,identifier"`
	Indicators []string `validate:"dive,identifier"`
}

// FactorDefinition describes one derived factor. It is created at load time
// and never modified afterwards.
type FactorDefinition struct {
	Name        string       `validate:"required,identifier"`
	Class       string       `validate:"required,identifier"`
	ComputeFunc string       `validate:"required,identifier"`
	Frequency   Frequency    `validate:"required"`
	DependsOn   Dependencies
	Sources     []Source     `validate:"dive"`
	Params      map[string]any

	// Origin is the file the definition was loaded from, if any.
	Origin string
}

// DataPaths returns the factor's own data paths in declaration order.
func (f *FactorDefinition) DataPaths() []string {
	paths := make([]string, 0, len(f.Sources))
	for _, s := range f.Sources {
		paths = append(paths, s.DataPath)
	}
	return paths
}

// IndicatorsFor returns the indicators the factor declares for path.
func (f *FactorDefinition) IndicatorsFor(path string) []string {
	for _, s := range f.Sources {
		if s.DataPath == path {
			return s.Indicators
		}
	}
	return nil
}

// Location addresses the physical table backing a data path. The planner
// treats it as opaque.
type Location struct {
	Namespace string
	Table     string
}

// Keys names the physical key columns of a data path. An empty name means the
// key kind does not apply to that path.
type Keys struct {
	Symbol string `validate:"omitempty,identifier"`
	Date   string `validate:"omitempty,identifier"`
	Time   string `validate:"omitempty,identifier"`
}

// Key kinds, in the order they are compared when building joins.
const (
	KeySymbol = "symbol"
	KeyDate   = "date"
	KeyTime   = "time"
)

// Column returns the physical column for a key kind, or "" if not applicable.
func (k Keys) Column(kind string) string {
	switch kind {
	case KeySymbol:
		return k.Symbol
	case KeyDate:
		return k.Date
	case KeyTime:
		return k.Time
	}
	return ""
}

// Kinds returns the applicable key kinds in symbol, date, time order.
func (k Keys) Kinds() []string {
	var kinds []string
	for _, kind := range []string{KeySymbol, KeyDate, KeyTime} {
		if k.Column(kind) != "" {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// IndicatorDefinition describes one raw data path.
type IndicatorDefinition struct {
	DataPath  string    `validate:"required,identifier"`
	Frequency Frequency `validate:"required"`
	Location  Location
	Keys      Keys
	Columns   map[string]string `validate:"min=1,dive,keys,identifier,endkeys,required"`

	Origin string
}

// ClassDefinition lists the preparation functions of a factor class, in the
// order they run.
type ClassDefinition struct {
	Name    string   `validate:"required,identifier"`
	Prepare []string `validate:"dive,identifier"`

	Origin string
}

// FunctionDefinition is a function manifest: the name a factor refers to,
// the role it plays, and the argument set it accepts.
type FunctionDefinition struct {
	Name      string       `validate:"required,identifier"`
	Kind      FunctionKind `validate:"required"`
	Signature Signature
	Doc       string

	Origin string
}

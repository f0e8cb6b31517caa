// Package classify assigns frequency classes to data paths and join shapes to
// factors, and partitions factors into join-groups that share one read.
//
// Results are returned as a Snapshot derived from the catalog; the catalog
// itself is never modified.
package classify

import (
	"strings"

	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/resolver"
)

// Shape is the frequency mix of a factor's resolved data paths.
type Shape int

const (
	// DD means every resolved path is daily (or there are none).
	DD Shape = iota
	// MM means every resolved path is intraday.
	MM
	// MD means the paths mix daily and intraday data.
	MD
)

func (s Shape) String() string {
	switch s {
	case MM:
		return "MM"
	case MD:
		return "MD"
	default:
		return "DD"
	}
}

// MarshalText renders the shape name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classifier answers frequency questions over one catalog.
type Classifier struct {
	cat      *catalog.Catalog
	resolver *resolver.Resolver
}

// New creates a classifier. The resolver must be built over the same catalog.
func New(cat *catalog.Catalog, r *resolver.Resolver) *Classifier {
	return &Classifier{cat: cat, resolver: r}
}

// ClassifyDataPath returns the frequency of a data path.
func (c *Classifier) ClassifyDataPath(path string) (catalog.Frequency, error) {
	def, ok := c.cat.Indicator(path)
	if !ok {
		return catalog.FrequencyUnknown, &catalog.MissingDataPathError{DataPath: path}
	}
	return def.Frequency, nil
}

// ClassifyFactor returns the join shape of a factor.
func (c *Classifier) ClassifyFactor(name string) (Shape, error) {
	paths, err := c.resolver.Resolve(name)
	if err != nil {
		return DD, err
	}
	return c.shapeOf(name, paths)
}

func (c *Classifier) shapeOf(factor string, paths []string) (Shape, error) {
	daily, intraday := 0, 0
	for _, p := range paths {
		def, ok := c.cat.Indicator(p)
		if !ok {
			return DD, &catalog.MissingDataPathError{Factor: factor, DataPath: p}
		}
		switch def.Frequency {
		case catalog.Daily:
			daily++
		case catalog.Intraday:
			intraday++
		default:
			return DD, &catalog.InvalidFrequencyTagError{Value: def.Frequency.String(), Owner: "indicator \"" + p + "\""}
		}
	}

	// The empty tuple is vacuously all daily, so the daily test goes first.
	switch {
	case intraday == 0:
		return DD, nil
	case daily == 0:
		return MM, nil
	default:
		return MD, nil
	}
}

// FactorInfo is the derived, resolved view of one factor.
type FactorInfo struct {
	Name      string
	DataPaths []string
	Shape     Shape
}

// Snapshot holds the resolved data paths and shape of a set of factors.
type Snapshot struct {
	order   []string
	factors map[string]*FactorInfo
}

// Classify resolves and classifies each named factor, keeping the given order.
func (c *Classifier) Classify(names []string) (*Snapshot, error) {
	snap := &Snapshot{factors: make(map[string]*FactorInfo, len(names))}
	for _, name := range names {
		if _, done := snap.factors[name]; done {
			continue
		}
		paths, err := c.resolver.Resolve(name)
		if err != nil {
			return nil, err
		}
		shape, err := c.shapeOf(name, paths)
		if err != nil {
			return nil, err
		}
		snap.factors[name] = &FactorInfo{Name: name, DataPaths: paths, Shape: shape}
		snap.order = append(snap.order, name)
	}
	return snap, nil
}

// Factor returns the derived info of a factor.
func (s *Snapshot) Factor(name string) (*FactorInfo, bool) {
	info, ok := s.factors[name]
	return info, ok
}

// Names returns the classified factors in classification order.
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.order...)
}

// Group is a set of factors sharing an identical ordered data-path tuple.
type Group struct {
	Key       string
	DataPaths []string
	Members   []string
	Shape     Shape
}

// TupleKey renders an ordered data-path tuple as a group key, e.g. "(a,b)".
func TupleKey(paths []string) string {
	return "(" + strings.Join(paths, ",") + ")"
}

// GroupByDataPathTuple partitions names into join-groups. Groups appear in
// order of their first member in names, members keep the order of names.
// Two factors share a group iff their resolved tuples are equal.
func GroupByDataPathTuple(snap *Snapshot, names []string) []*Group {
	var groups []*Group
	byKey := make(map[string]*Group)
	for _, name := range names {
		info, ok := snap.Factor(name)
		if !ok {
			continue
		}
		key := TupleKey(info.DataPaths)
		g, exists := byKey[key]
		if !exists {
			g = &Group{
				Key:       key,
				DataPaths: append([]string(nil), info.DataPaths...),
				Shape:     info.Shape,
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.Members = append(g.Members, name)
	}
	return groups
}

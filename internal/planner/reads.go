package planner

import (
	"fmt"

	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/classify"
	"github.com/vk/factorgrid/internal/dag"
)

// readStages builds the read strategy of one join-group: nothing for the
// empty tuple, a single Read for one path, and a chain of Joins otherwise,
// joining the first two sources and then each further source onto the
// accumulated result in tuple order.
func (p *Planner) readStages(graph *dag.Graph, g *classify.Group) ([]Stage, error) {
	if len(g.DataPaths) == 0 {
		return nil, nil
	}

	refs, err := p.groupIndicators(graph, g)
	if err != nil {
		return nil, err
	}

	if len(g.DataPaths) == 1 {
		path := g.DataPaths[0]
		return []Stage{{
			Kind:       KindRead,
			Key:        "read:" + g.Key,
			Group:      g.Key,
			DataPaths:  []string{path},
			Indicators: refs[path],
			Shape:      g.Shape,
		}}, nil
	}

	first := g.DataPaths[0]
	firstDef, _ := p.cat.Indicator(first)

	stages := make([]Stage, 0, len(g.DataPaths)-1)
	for i := 1; i < len(g.DataPaths); i++ {
		right := g.DataPaths[i]
		rightDef, _ := p.cat.Indicator(right)

		keys := commonKeys(firstDef.Keys, rightDef.Keys)
		if len(keys) == 0 {
			return nil, &catalog.JoinKeyError{Group: g.Key, Left: first, Right: right}
		}

		var indicators []IndicatorRef
		if i == 1 {
			indicators = append(indicators, refs[first]...)
		}
		indicators = append(indicators, refs[right]...)

		stages = append(stages, Stage{
			Kind:       KindJoin,
			Key:        fmt.Sprintf("join:%s#%d", g.Key, i),
			Group:      g.Key,
			DataPaths:  append([]string(nil), g.DataPaths[:i+1]...),
			Indicators: indicators,
			JoinKeys:   keys,
			Shape:      g.Shape,
		})
	}
	return stages, nil
}

// groupIndicators collects, for every path of the group tuple, the union of
// indicators declared for that path by the group's members and their
// ancestors, in first-seen order, and maps each to its physical column.
func (p *Planner) groupIndicators(graph *dag.Graph, g *classify.Group) (map[string][]IndicatorRef, error) {
	inTuple := make(map[string]bool, len(g.DataPaths))
	for _, path := range g.DataPaths {
		inTuple[path] = true
	}

	refs := make(map[string][]IndicatorRef, len(g.DataPaths))
	seen := make(map[string]map[string]bool, len(g.DataPaths))
	visitedFactor := make(map[string]bool)

	collect := func(name string) error {
		if visitedFactor[name] {
			return nil
		}
		visitedFactor[name] = true

		def, _ := p.cat.Factor(name)
		for _, src := range def.Sources {
			if !inTuple[src.DataPath] {
				continue
			}
			ind, ok := p.cat.Indicator(src.DataPath)
			if !ok {
				return &catalog.MissingDataPathError{Factor: name, DataPath: src.DataPath}
			}
			if seen[src.DataPath] == nil {
				seen[src.DataPath] = make(map[string]bool)
			}
			for _, indicator := range src.Indicators {
				if seen[src.DataPath][indicator] {
					continue
				}
				column, ok := ind.Columns[indicator]
				if !ok {
					return &catalog.MissingIndicatorMappingError{DataPath: src.DataPath, Indicator: indicator, Factor: name}
				}
				seen[src.DataPath][indicator] = true
				refs[src.DataPath] = append(refs[src.DataPath], IndicatorRef{DataPath: src.DataPath, Indicator: indicator, Column: column})
			}
		}
		return nil
	}

	for _, member := range g.Members {
		if err := collect(member); err != nil {
			return nil, err
		}
		ancestors, err := graph.Ancestors(member)
		if err != nil {
			return nil, err
		}
		for _, a := range ancestors {
			if err := collect(a); err != nil {
				return nil, err
			}
		}
	}
	return refs, nil
}

// commonKeys returns the key kinds applicable to both sides of a join.
func commonKeys(left, right catalog.Keys) []JoinKey {
	var keys []JoinKey
	for _, kind := range left.Kinds() {
		if col := right.Column(kind); col != "" {
			keys = append(keys, JoinKey{Kind: kind, Left: left.Column(kind), Right: col})
		}
	}
	return keys
}

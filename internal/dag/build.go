package dag

import (
	"context"
	"fmt"

	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/ctxlog"
)

// Build constructs a complete, validated dependency graph from a catalog.
// It fails with *catalog.UnknownFactorReferenceError when a factor depends on
// a name the catalog does not define, and with *catalog.DependencyCycleError
// when the dependencies are cyclic. A failed build returns no graph.
func Build(ctx context.Context, cat *catalog.Catalog) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := New()

	// First pass: one node per factor.
	createNodes(cat, graph)
	logger.Debug("Build: Node creation complete.", "node_count", graph.Len())

	// Second pass: link declared factor dependencies.
	edges, err := linkNodes(cat, graph)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.", "edge_count", edges)

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}

// createNodes performs the first pass of graph creation.
func createNodes(cat *catalog.Catalog, graph *Graph) {
	for i, name := range cat.FactorNames() {
		graph.AddNode(name, i)
	}
}

// linkNodes performs the second pass, returning the number of edges added.
func linkNodes(cat *catalog.Catalog, graph *Graph) (int, error) {
	edges := 0
	for _, f := range cat.Factors() {
		for _, dep := range f.DependsOn.Factors {
			if !graph.Has(dep) {
				return 0, &catalog.UnknownFactorReferenceError{Name: dep, ReferencedBy: f.Name}
			}
			if err := graph.AddEdge(dep, f.Name); err != nil {
				return 0, fmt.Errorf("error linking factor %q: %w", f.Name, err)
			}
			edges++
		}
	}
	return edges, nil
}

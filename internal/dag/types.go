package dag

import "sync"

// Graph is the factor dependency graph. An edge dep -> factor means factor
// depends on dep. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by factor name.
	nodes map[string]*node
}

// node represents a single factor in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using names),
// not by direct struct manipulation.
type node struct {
	// id is the factor name.
	id string
	// index is the declaration index, used to order every listing.
	index int
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}

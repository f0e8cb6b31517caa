package dag

import (
	"container/heap"
	"fmt"

	"github.com/vk/factorgrid/internal/catalog"
)

// Ancestors returns every factor the named factor transitively depends on,
// excluding itself, in declaration order.
func (g *Graph) Ancestors(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, &catalog.UnknownFactorReferenceError{Name: id}
	}

	seen := make(map[string]*node)
	collectAncestors(n, seen)
	return sortedIDs(seen), nil
}

func collectAncestors(n *node, seen map[string]*node) {
	for _, dep := range n.deps {
		if _, ok := seen[dep.id]; ok {
			continue
		}
		seen[dep.id] = dep
		collectAncestors(dep, seen)
	}
}

// Closure returns the requested factors together with all their ancestors,
// in declaration order. The result is closed under dependency: every
// dependency of a member is itself a member.
func (g *Graph) Closure(ids []string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]*node)
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			return nil, &catalog.UnknownFactorReferenceError{Name: id}
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = n
		collectAncestors(n, seen)
	}
	return sortedIDs(seen), nil
}

// TopologicalOrder returns the closure of ids ordered so that every factor
// appears after all of its dependencies. Among factors that are ready at the
// same time, the one declared first comes first.
func (g *Graph) TopologicalOrder(ids []string) ([]string, error) {
	closure, err := g.Closure(ids)
	if err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	inDegree := make(map[string]int, len(closure))
	ready := &readyQueue{}
	for _, id := range closure {
		n := g.nodes[id]
		inDegree[id] = len(n.deps)
		if len(n.deps) == 0 {
			heap.Push(ready, n)
		}
	}

	order := make([]string, 0, len(closure))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*node)
		order = append(order, n.id)
		for _, dependent := range n.dependents {
			deg, inClosure := inDegree[dependent.id]
			if !inClosure {
				continue
			}
			inDegree[dependent.id] = deg - 1
			if deg-1 == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	if len(order) != len(closure) {
		// Unreachable for graphs produced by Build.
		return nil, fmt.Errorf("topological sort incomplete: ordered %d of %d factors", len(order), len(closure))
	}
	return order, nil
}

// readyQueue is a min-heap of nodes keyed by declaration index.
type readyQueue []*node

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	if q[i].index != q[j].index {
		return q[i].index < q[j].index
	}
	return q[i].id < q[j].id
}
func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x any)   { *q = append(*q, x.(*node)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// Package dag builds the factor dependency graph from a catalog and answers
// the structural questions planning depends on: whether the graph is
// acyclic, which factors a request transitively needs, and in what order
// they can be computed.
//
// Every listing the package returns is ordered by catalog declaration index,
// so two runs over the same catalog always agree.
package dag

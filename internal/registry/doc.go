// Package registry provides the central "glue" between catalog function
// references and Go code.
//
// The Registry stores the function manifests declared in catalog files (the
// name a factor refers to, its kind and its signature class) and the compiled
// Go implementations bound to those names by modules.
//
// Planning only needs the manifests: a plan can be computed for a catalog
// whose functions have no Go implementation yet. Execution additionally
// needs every function of the plan to be bound, which ValidateBindings
// checks up front so a wide class of runtime errors is caught before any
// stage runs.
package registry

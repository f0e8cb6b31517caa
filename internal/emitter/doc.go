// Package emitter renders plans and catalogs for people and tools. Rendering
// is a separate phase from planning: the planner returns a stage list and
// the functions here only format it.
package emitter

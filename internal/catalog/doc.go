// Package catalog holds the format-agnostic model of a factor catalog: factor
// definitions, the indicator (raw data path) catalog, classes with their
// preparation functions, and the declared function manifests.
//
// A Catalog is assembled once by a Loader and treated as read-only from then
// on. Everything derived from it (resolved data paths, join shapes, plans)
// lives in separate structures owned by the packages that compute them.
//
// Declaration order is significant: it is the tie-break that makes planning
// deterministic, so the catalog keeps every collection in the order its
// definitions were added.
package catalog

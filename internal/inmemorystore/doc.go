// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the resultstore.Store interface.
//
// # Concurrency Model
//
// The store uses sync.Map because each stage and each factor is written by
// exactly one worker while other workers read finished results. The key space
// is known up front (the plan's stages and factors) and entries are written
// once or updated in place, which is the access pattern sync.Map is built for.
//
// Write-once semantics for factor results rely on LoadOrStore, so two racing
// writers can never both succeed.
package inmemorystore

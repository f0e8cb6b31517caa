package executor

import (
	"context"

	"github.com/vk/factorgrid/internal/planner"
)

// Backend performs the storage side of a plan: loading raw data for Read and
// Join stages and writing factor values for Persist stages.
type Backend interface {
	// Read loads the data of a Read stage, or of a Join stage's newly joined
	// path merged onto prev, the group's accumulated data. prev is nil for
	// Read stages.
	Read(ctx context.Context, stage planner.Stage, prev any) (any, error)

	// Persist writes the computed values of the stage's factors.
	Persist(ctx context.Context, stage planner.Stage, results map[string]any) error
}

// NopBackend reads nothing and discards writes. Read returns the stage
// itself so downstream functions can see what would have been loaded.
type NopBackend struct{}

var _ Backend = NopBackend{}

func (NopBackend) Read(ctx context.Context, stage planner.Stage, prev any) (any, error) {
	return stage, nil
}

func (NopBackend) Persist(ctx context.Context, stage planner.Stage, results map[string]any) error {
	return nil
}

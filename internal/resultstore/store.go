// Package resultstore defines the interface for storing the mutable state of
// a plan execution: per-stage status and errors, and the computed value of
// each factor.
//
// The store keeps execution state apart from the immutable plan. A store is
// created once per run, written by executor workers as stages finish, read
// by compute stages looking up their dependencies, and discarded afterwards.
//
// Stages follow this lifecycle:
//
//	Pending → Running → Completed | Failed
//	Pending → Skipped (an upstream stage failed or the run was cancelled)
//
// Factor results are write-once: the first PutResult for a factor wins and
// every later one fails with *AlreadyWrittenError.
package resultstore

import (
	"context"
	"fmt"
)

// Status is the execution state of one stage.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AlreadyWrittenError reports a second write of a factor result.
type AlreadyWrittenError struct {
	Factor string
}

func (e *AlreadyWrittenError) Error() string {
	return fmt.Sprintf("result of factor %q has already been written", e.Factor)
}

// Store manages the execution state of one plan run.
//
// Implementations MUST be safe for concurrent use: workers update different
// stages in parallel while compute stages read the results of others.
type Store interface {
	// SetStatus records the status of a stage, keyed by the stage key.
	SetStatus(ctx context.Context, stage string, status Status) error

	// GetStatus returns StatusPending for a stage that has no status yet.
	GetStatus(ctx context.Context, stage string) (Status, error)

	// SetError records why a stage failed.
	SetError(ctx context.Context, stage string, stageErr error) error

	// GetError returns nil if the stage has not failed.
	GetError(ctx context.Context, stage string) (error, error)

	// PutResult stores the computed value of a factor exactly once.
	PutResult(ctx context.Context, factor string, value any) error

	// GetResult returns the value of a factor and whether it was written.
	GetResult(ctx context.Context, factor string) (any, bool, error)
}

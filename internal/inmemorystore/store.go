package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/factorgrid/internal/resultstore"
)

// Store is an in-memory implementation of resultstore.Store.
//
// The store maintains three independent sync.Maps:
//   - statuses: stage key to resultstore.Status
//   - errors: stage key to the error of a failed stage
//   - results: factor name to its computed value
type Store struct {
	statuses sync.Map
	errors   sync.Map
	results  sync.Map
}

// New creates a new, empty in-memory result store.
func New() *Store {
	return &Store{}
}

var _ resultstore.Store = (*Store)(nil)

// SetStatus updates the execution status of a stage.
func (s *Store) SetStatus(ctx context.Context, stage string, status resultstore.Status) error {
	s.statuses.Store(stage, status)
	return nil
}

// GetStatus retrieves the execution status of a stage.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(ctx context.Context, stage string) (resultstore.Status, error) {
	status, ok := s.statuses.Load(stage)
	if !ok {
		return resultstore.StatusPending, nil
	}
	return status.(resultstore.Status), nil
}

// SetError records the failure error of a stage.
func (s *Store) SetError(ctx context.Context, stage string, stageErr error) error {
	s.errors.Store(stage, stageErr)
	return nil
}

// GetError retrieves the recorded error of a failed stage.
func (s *Store) GetError(ctx context.Context, stage string) (error, error) {
	err, ok := s.errors.Load(stage)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// PutResult records the computed value of a factor. A second write for the
// same factor fails and leaves the first value in place.
func (s *Store) PutResult(ctx context.Context, factor string, value any) error {
	if _, loaded := s.results.LoadOrStore(factor, value); loaded {
		return &resultstore.AlreadyWrittenError{Factor: factor}
	}
	return nil
}

// GetResult retrieves the computed value of a factor.
func (s *Store) GetResult(ctx context.Context, factor string) (any, bool, error) {
	value, ok := s.results.Load(factor)
	return value, ok, nil
}

// Results returns a copy of every factor result written so far.
func (s *Store) Results() map[string]any {
	out := make(map[string]any)
	s.results.Range(func(k, v any) bool {
		out[k.(string)] = v
		return true
	})
	return out
}

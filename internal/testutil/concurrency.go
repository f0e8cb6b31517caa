package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/factorgrid/internal/registry"
)

// ExecutionRecord holds the start and end times of one function call.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// MockSleeperModule is a shared module for concurrency tests. It binds the
// named functions to an implementation that sleeps and records when each
// call ran, keyed by "function" or "function(factor)".
type MockSleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	functions      []string
	sleepDuration  time.Duration
	fail           map[string]error
}

// NewMockSleeperModule creates a new sleeper module for the given functions.
func NewMockSleeperModule(sleep time.Duration, functions ...string) *MockSleeperModule {
	return &MockSleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		functions:      functions,
		sleepDuration:  sleep,
		fail:           make(map[string]error),
	}
}

// FailOn makes calls recorded under key return err.
func (m *MockSleeperModule) FailOn(key string, err error) *MockSleeperModule {
	m.fail[key] = err
	return m
}

// Register binds the sleeper to every configured function name.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	for _, name := range m.functions {
		r.Bind(name, m.sleep)
	}
}

func (m *MockSleeperModule) sleep(ctx context.Context, call registry.Call) (any, error) {
	key := call.Function
	if call.Factor != "" {
		key = fmt.Sprintf("%s(%s)", call.Function, call.Factor)
	}

	startTime := time.Now()
	select {
	case <-time.After(m.sleepDuration):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	endTime := time.Now()

	m.mu.Lock()
	m.ExecutionTimes[key] = &ExecutionRecord{Start: startTime, End: endTime}
	err := m.fail[key]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return key, nil
}

// Record returns the execution record of key, if the call happened.
func (m *MockSleeperModule) Record(key string) (*ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.ExecutionTimes[key]
	return rec, ok
}

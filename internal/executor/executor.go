// Package executor runs a plan concurrently while honoring its partial
// order. Each stage becomes a node; a pool of workers pulls nodes whose
// dependencies have all completed. The first failure cancels the run and
// every stage downstream of it is skipped.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/planner"
	"github.com/vk/factorgrid/internal/registry"
	"github.com/vk/factorgrid/internal/resultstore"
	"golang.org/x/sync/errgroup"
)

// Observer receives the outcome of every stage.
type Observer interface {
	ObserveStage(kind, status string, duration time.Duration)
}

// Executor runs one plan.
type Executor struct {
	plan       *planner.Plan
	reg        *registry.Registry
	backend    Backend
	store      resultstore.Store
	observer   Observer
	numWorkers int

	nodes []*node
	wg    sync.WaitGroup

	groupData  sync.Map // join-group key -> accumulated data
	prepData   sync.Map // class@group -> prepared data
	factorData sync.Map // factor -> data after its intermediate functions
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers sets the size of the worker pool. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.numWorkers = n
		}
	}
}

// WithObserver reports every stage outcome to o.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// New creates an executor for plan. Functions are invoked through reg,
// raw data goes through backend and factor values are written to store.
func New(plan *planner.Plan, reg *registry.Registry, backend Backend, store resultstore.Store, opts ...Option) *Executor {
	e := &Executor{
		plan:       plan,
		reg:        reg,
		backend:    backend,
		store:      store,
		numWorkers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.nodes = buildNodes(plan.Stages)
	return e
}

// Run executes every stage of the plan and returns a report of the run. The
// report is returned even when the run fails.
func (e *Executor) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	report := &Report{RunID: runID, Started: time.Now()}

	if err := e.reg.ValidateBindings(ctx, e.plan.Functions()); err != nil {
		report.Finished = time.Now()
		return report, err
	}

	readyChan := make(chan *node, len(e.nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root stages...")
	rootCount := 0
	for _, n := range e.nodes {
		if n.depCount.Load() == 0 {
			readyChan <- n
			rootCount++
		}
	}
	logger.Debug("Found all root stages.", "count", rootCount, "stages", len(e.nodes))

	e.wg.Add(len(e.nodes))

	var g errgroup.Group
	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		workerID := i
		g.Go(func() error {
			e.worker(runCtx, readyChan, cancel, workerID)
			return nil
		})
	}

	e.wg.Wait()
	close(readyChan)
	_ = g.Wait()
	logger.Info("All stages finished.", "stages", len(e.nodes))

	report.Finished = time.Now()
	var failed []string
	var rootCause error
	for _, n := range e.nodes {
		report.Stages = append(report.Stages, n.report())
		if n.status() != resultstore.StatusFailed {
			continue
		}
		if n.err != nil && !errors.Is(n.err, context.Canceled) {
			failed = append(failed, n.stage.Key)
			if rootCause == nil {
				rootCause = n.err
			}
		}
	}

	if rootCause != nil {
		return report, fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/planner"
	"github.com/vk/factorgrid/internal/registry"
	"github.com/vk/factorgrid/internal/resultstore"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "stage", n.stage.Key)

		if ctx.Err() != nil {
			e.skip(ctx, n, ctx.Err())
			e.skipDependents(ctx, n)
			continue
		}

		workerLogger.Debug("Worker picked up stage for execution.")
		n.start = time.Now()
		e.record(ctx, n, resultstore.StatusRunning, nil)

		err := e.runStage(ctx, n.stage)
		n.end = time.Now()

		if err != nil {
			workerLogger.Error("Stage execution failed.", "error", err)
			n.err = err
			e.record(ctx, n, resultstore.StatusFailed, err)
			e.observe(n)
			cancel()
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Stage execution succeeded.")
		e.record(ctx, n, resultstore.StatusCompleted, nil)
		e.observe(n)

		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent stage.", "dependent", dependent.stage.Key)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skip marks a stage that never ran and reports whether this call did it.
func (e *Executor) skip(ctx context.Context, n *node, reason error) bool {
	skipped := false
	n.skipOnce.Do(func() {
		skipped = true
		ctxlog.FromContext(ctx).Warn("Skipping stage.", "stage", n.stage.Key, "reason", reason)
		n.err = reason
		e.record(ctx, n, resultstore.StatusSkipped, nil)
		e.observe(n)
		e.wg.Done()
	})
	return skipped
}

// record sets the status of n and mirrors it, with stageErr if any, into the
// result store. Store failures are logged and do not change the run outcome.
func (e *Executor) record(ctx context.Context, n *node, status resultstore.Status, stageErr error) {
	n.setStatus(status)

	logger := ctxlog.FromContext(ctx)
	storeCtx := context.WithoutCancel(ctx)
	if err := e.store.SetStatus(storeCtx, n.stage.Key, status); err != nil {
		logger.Warn("Failed to record stage status.", "stage", n.stage.Key, "status", status, "error", err)
	}
	if stageErr == nil {
		return
	}
	if err := e.store.SetError(storeCtx, n.stage.Key, stageErr); err != nil {
		logger.Warn("Failed to record stage error.", "stage", n.stage.Key, "error", err)
	}
}

// skipDependents recursively skips every stage downstream of n.
func (e *Executor) skipDependents(ctx context.Context, n *node) {
	for _, dependent := range n.dependents {
		if e.skip(ctx, dependent, fmt.Errorf("skipped due to upstream failure of '%s'", n.stage.Key)) {
			e.skipDependents(ctx, dependent)
		}
	}
}

func (e *Executor) observe(n *node) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveStage(n.stage.Kind.String(), n.status().String(), n.end.Sub(n.start))
}

// runStage performs the work of one stage.
func (e *Executor) runStage(ctx context.Context, s planner.Stage) error {
	switch s.Kind {
	case planner.KindRead, planner.KindJoin:
		var prev any
		if s.Kind == planner.KindJoin {
			prev, _ = e.groupData.Load(s.Group)
		}
		data, err := e.backend.Read(ctx, s, prev)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.Key, err)
		}
		e.groupData.Store(s.Group, data)
		return nil

	case planner.KindClassPrep:
		out, err := e.reg.Invoke(ctx, s.Function, registry.Call{
			Class: s.Class,
			Data:  e.prepInput(s),
		})
		if err != nil {
			return fmt.Errorf("class preparation %q of %s: %w", s.Function, s.Class, err)
		}
		e.prepData.Store(s.Class+"@"+s.Group, out)
		return nil

	case planner.KindIntermediateFunc:
		out, err := e.reg.Invoke(ctx, s.Function, registry.Call{
			Factor: s.Factor,
			Class:  s.Class,
			Data:   e.factorInput(s),
		})
		if err != nil {
			return fmt.Errorf("intermediate function %q of %s: %w", s.Function, s.Factor, err)
		}
		e.factorData.Store(s.Factor, out)
		return nil

	case planner.KindCompute:
		deps := make(map[string]any, len(s.Deps))
		for _, dep := range s.Deps {
			value, ok, err := e.store.GetResult(ctx, dep)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("factor %q has no result for dependency %q", s.Factor, dep)
			}
			deps[dep] = value
		}
		out, err := e.reg.Invoke(ctx, s.Function, registry.Call{
			Factor: s.Factor,
			Class:  s.Class,
			Params: s.Params,
			Data:   e.factorInput(s),
			Deps:   deps,
		})
		if err != nil {
			return fmt.Errorf("computing %s: %w", s.Factor, err)
		}
		return e.store.PutResult(ctx, s.Factor, out)

	case planner.KindPersist:
		results := make(map[string]any, len(s.Factors))
		for _, f := range s.Factors {
			value, ok, err := e.store.GetResult(ctx, f)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: factor %q has no result", s.Key, f)
			}
			results[f] = value
		}
		if err := e.backend.Persist(ctx, s, results); err != nil {
			return fmt.Errorf("persisting %s: %w", s.Bucket, err)
		}
		return nil
	}
	return fmt.Errorf("unknown stage kind %d", s.Kind)
}

// prepInput is the data a class preparation function starts from: the
// output of the previous preparation of the same class and group, or the
// group's raw data.
func (e *Executor) prepInput(s planner.Stage) any {
	if v, ok := e.prepData.Load(s.Class + "@" + s.Group); ok {
		return v
	}
	v, _ := e.groupData.Load(s.Group)
	return v
}

// factorInput is the data an intermediate or compute function of a factor
// starts from: the output of its last intermediate function, or else the
// prepared class data, or else the group's raw data.
func (e *Executor) factorInput(s planner.Stage) any {
	if v, ok := e.factorData.Load(s.Factor); ok {
		return v
	}
	return e.prepInput(s)
}

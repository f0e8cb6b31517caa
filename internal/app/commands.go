package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/emitter"
	"github.com/vk/factorgrid/internal/executor"
	"github.com/vk/factorgrid/internal/inmemorystore"
	"github.com/vk/factorgrid/internal/planner"
	"github.com/vk/factorgrid/internal/resultstore"
	"github.com/vk/factorgrid/modules/dryrun"
)

// Output formats accepted by Plan and Simulate.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Request selects the factors a command works on.
type Request struct {
	Factors []string
	// All requests every factor of the catalog and overrides Factors.
	All bool
}

func (a *App) requested(req Request) []string {
	if req.All {
		return a.catalog.FactorNames()
	}
	return req.Factors
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) newPlanner() *planner.Planner {
	return planner.New(a.catalog, a.registry, planner.WithRecorder(a.metrics))
}

// Check validates every function reference of the catalog and plans every
// factor, which surfaces cycles, unresolved data paths and missing
// indicator mappings.
func (a *App) Check(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("App.Check started.")

	if err := a.registry.ValidateCatalog(ctx, a.catalog); err != nil {
		return fmt.Errorf("function references are invalid:\n%w", err)
	}
	plan, err := a.newPlanner().Plan(ctx, a.catalog.FactorNames())
	if err != nil {
		return err
	}

	fmt.Fprintf(a.outW, "catalog OK: %d factors, %d indicators, %d classes, %d functions, %d stages\n",
		a.catalog.Len(), len(a.catalog.Indicators()), len(a.catalog.Classes()), len(a.catalog.Functions()), len(plan.Stages))
	return nil
}

// Plan computes the plan of the requested factors and writes it in format.
func (a *App) Plan(ctx context.Context, req Request, format string) error {
	ctx = a.withLogger(ctx)
	render, err := planRenderer(format)
	if err != nil {
		return err
	}

	plan, err := a.newPlanner().Plan(ctx, a.requested(req))
	if err != nil {
		return err
	}
	a.logger.Info("Plan computed.", "requested", len(plan.Requested), "universe", len(plan.Universe), "stages", len(plan.Stages))
	return render(a.outW, plan)
}

func planRenderer(format string) (func(w io.Writer, plan *planner.Plan) error, error) {
	switch format {
	case "", FormatText:
		return emitter.Text, nil
	case FormatJSON:
		return emitter.JSON, nil
	default:
		return nil, fmt.Errorf("unknown output format %q: must be 'text' or 'json'", format)
	}
}

// Graph writes the catalog's dependency graph in DOT format.
func (a *App) Graph(ctx context.Context, opts emitter.DotOptions) error {
	a.logger.Debug("App.Graph started.", "view", opts.View, "class", opts.Class)
	return emitter.DOT(a.outW, a.catalog, opts)
}

// Simulate plans the requested factors and executes the plan with stand-in
// functions and a backend that reads nothing and persists nothing. Every
// declared function without a Go implementation is bound to dryrun.Noop.
func (a *App) Simulate(ctx context.Context, req Request, format string) (*executor.Report, error) {
	ctx = a.withLogger(ctx)
	if format != "" && format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("unknown output format %q: must be 'text' or 'json'", format)
	}

	plan, err := a.newPlanner().Plan(ctx, a.requested(req))
	if err != nil {
		return nil, err
	}

	(&dryrun.Module{}).Register(a.registry)

	a.logger.Info("🚀 Starting simulated execution...", "stages", len(plan.Stages), "workers", a.config.WorkerCount)
	exec := executor.New(plan, a.registry, executor.NopBackend{}, inmemorystore.New(),
		executor.WithWorkers(a.config.WorkerCount),
		executor.WithObserver(a.metrics))
	report, runErr := exec.Run(ctx)
	a.logger.Info("🏁 Execution finished.", "run_id", report.RunID)

	var writeErr error
	if format == FormatJSON {
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		writeErr = enc.Encode(report)
	} else {
		writeErr = writeReport(a.outW, report)
	}
	if runErr != nil {
		return report, runErr
	}
	return report, writeErr
}

// writeReport renders a run report as an aligned table with a summary line.
func writeReport(w io.Writer, r *executor.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range r.Stages {
		duration := "-"
		if !s.Start.IsZero() {
			duration = s.End.Sub(s.Start).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Seq, s.Key, s.Status, duration, s.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "run %s: %d stages, %d completed, %d failed, %d skipped\n",
		r.RunID, len(r.Stages),
		r.Count(resultstore.StatusCompleted),
		r.Count(resultstore.StatusFailed),
		r.Count(resultstore.StatusSkipped))
	return err
}

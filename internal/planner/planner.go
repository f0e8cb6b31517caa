// Package planner turns a catalog and a requested set of factors into a
// deterministic, dependency-respecting sequence of typed stages: reads and
// joins of raw data per join-group, class preparation, intermediate
// functions, factor computation, and finally persistence of the requested
// factors grouped by output frequency.
//
// Planning is pure and single-threaded. It never talks to a store; the
// returned Plan is rendered or executed by other packages.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/classify"
	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/dag"
	"github.com/vk/factorgrid/internal/registry"
	"github.com/vk/factorgrid/internal/resolver"
)

// Recorder receives planning measurements.
type Recorder interface {
	ObservePlan(duration time.Duration, stagesByKind map[string]int, err error)
}

// Planner computes execution plans over one catalog.
type Planner struct {
	cat      *catalog.Catalog
	reg      *registry.Registry
	recorder Recorder
}

// Option configures a Planner.
type Option func(*Planner)

// WithRecorder reports every planning run to r.
func WithRecorder(r Recorder) Option {
	return func(p *Planner) { p.recorder = r }
}

// New creates a planner. Function references are checked against the
// manifests declared in reg.
func New(cat *catalog.Catalog, reg *registry.Registry, opts ...Option) *Planner {
	p := &Planner{cat: cat, reg: reg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan is the result of a successful planning run.
type Plan struct {
	// Requested is the deduplicated requested set, in request order.
	Requested []string
	// Universe is the dependency closure of Requested in global order.
	Universe []string
	// Groups are the join-groups of the universe in emission order.
	Groups []*classify.Group
	// Snapshot holds resolved data paths and shapes of the universe.
	Snapshot *classify.Snapshot
	Stages   []Stage
}

// ComputeIndex returns the position of a factor's Compute stage, or -1.
func (p *Plan) ComputeIndex(name string) int {
	for i, s := range p.Stages {
		if s.Kind == KindCompute && s.Factor == name {
			return i
		}
	}
	return -1
}

// StagesOf returns the stages of one kind in plan order.
func (p *Plan) StagesOf(kind Kind) []Stage {
	var out []Stage
	for _, s := range p.Stages {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Functions returns every function name the plan invokes, first use first.
func (p *Plan) Functions() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range p.Stages {
		if s.Function == "" || seen[s.Function] {
			continue
		}
		seen[s.Function] = true
		out = append(out, s.Function)
	}
	return out
}

// Plan computes the execution plan for requested. On any error it returns
// a nil plan; partial plans are never produced.
func (p *Planner) Plan(ctx context.Context, requested []string) (*Plan, error) {
	start := time.Now()
	plan, err := p.plan(ctx, requested)
	if p.recorder != nil {
		counts := make(map[string]int)
		if plan != nil {
			for _, s := range plan.Stages {
				counts[s.Kind.String()]++
			}
		}
		p.recorder.ObservePlan(time.Since(start), counts, err)
	}
	return plan, err
}

func (p *Planner) plan(ctx context.Context, requested []string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Plan: Starting.", "requested", requested)

	req := dedupe(requested)
	for _, name := range req {
		if _, ok := p.cat.Factor(name); !ok {
			return nil, &catalog.UnknownFactorReferenceError{Name: name}
		}
	}
	if len(req) == 0 {
		logger.Debug("Plan: Empty request, nothing to plan.")
		return &Plan{Snapshot: &classify.Snapshot{}}, nil
	}

	graph, err := dag.Build(ctx, p.cat)
	if err != nil {
		return nil, err
	}

	// Global order over the closure doubles as the universe listing.
	order, err := graph.TopologicalOrder(req)
	if err != nil {
		return nil, err
	}
	tr := newTracker(logger, order)
	fail := func(err error) (*Plan, error) {
		tr.failAll(err)
		return nil, err
	}
	tr.advanceAll(DependencyResolved)
	logger.Debug("Plan: Dependency closure computed.", "universe", len(order))

	snap, err := classify.New(p.cat, resolver.New(p.cat)).Classify(order)
	if err != nil {
		return fail(err)
	}
	tr.advanceAll(Classified)

	if err := p.checkFunctions(order); err != nil {
		return fail(err)
	}
	logger.Debug("Plan: Function references validated.")

	groups := classify.GroupByDataPathTuple(snap, order)
	reads := make(map[string][]Stage, len(groups))
	groupOf := make(map[string]*classify.Group, len(order))
	for _, g := range groups {
		stages, err := p.readStages(graph, g)
		if err != nil {
			return fail(err)
		}
		reads[g.Key] = stages
		for _, m := range g.Members {
			groupOf[m] = g
		}
	}
	tr.advanceAll(Grouped)
	logger.Debug("Plan: Join groups formed.", "groups", len(groups))

	tr.advanceAll(Ordered)

	e := &emitter{}
	readEmitted := make(map[string]bool, len(groups))
	prepEmitted := make(map[string]bool)
	for _, name := range order {
		def, _ := p.cat.Factor(name)
		g := groupOf[name]

		if !readEmitted[g.Key] {
			readEmitted[g.Key] = true
			for _, s := range reads[g.Key] {
				e.add(s)
			}
		}

		prepKey := def.Class + "@" + g.Key
		if !prepEmitted[prepKey] {
			prepEmitted[prepKey] = true
			for _, fn := range p.cat.PrepareFuncs(def.Class) {
				e.add(Stage{
					Kind:     KindClassPrep,
					Key:      fmt.Sprintf("prep:%s@%s:%s", def.Class, g.Key, fn),
					Group:    g.Key,
					Class:    def.Class,
					Function: fn,
					Shape:    g.Shape,
				})
			}
		}

		for i, fn := range def.DependsOn.IntermediateFuncs {
			e.add(Stage{
				Kind:     KindIntermediateFunc,
				Key:      fmt.Sprintf("mid:%s:%s#%d", name, fn, i),
				Group:    g.Key,
				Factor:   name,
				Class:    def.Class,
				Function: fn,
				Shape:    g.Shape,
			})
		}

		e.add(Stage{
			Kind:      KindCompute,
			Key:       "compute:" + name,
			Group:     g.Key,
			Factor:    name,
			Class:     def.Class,
			Function:  def.ComputeFunc,
			Deps:      dedupe(def.DependsOn.Factors),
			Params:    def.Params,
			DataPaths: append([]string(nil), g.DataPaths...),
			Shape:     g.Shape,
		})
		tr.advance(name, Emitted)
	}

	for _, bucket := range []catalog.Frequency{catalog.Daily, catalog.Intraday} {
		var members []string
		for _, name := range order {
			def, _ := p.cat.Factor(name)
			if def.Frequency == bucket && contains(req, name) {
				members = append(members, name)
			}
		}
		if len(members) == 0 {
			continue
		}
		e.add(Stage{
			Kind:    KindPersist,
			Key:     "persist:" + bucket.String(),
			Bucket:  bucket,
			Factors: members,
		})
	}

	logger.Debug("Plan: Finished.", "stages", len(e.stages), "universe", len(order))
	return &Plan{
		Requested: req,
		Universe:  order,
		Groups:    groups,
		Snapshot:  snap,
		Stages:    e.stages,
	}, nil
}

// checkFunctions validates every function reference of the universe, in
// global order, returning the first failure.
func (p *Planner) checkFunctions(order []string) error {
	for _, name := range order {
		def, _ := p.cat.Factor(name)
		if _, err := p.reg.Lookup(def.ComputeFunc, catalog.KindCompute, name); err != nil {
			return err
		}
		for _, fn := range def.DependsOn.IntermediateFuncs {
			if _, err := p.reg.Lookup(fn, catalog.KindIntermediate, name); err != nil {
				return err
			}
		}
		for _, fn := range p.cat.PrepareFuncs(def.Class) {
			if _, err := p.reg.Lookup(fn, catalog.KindPrepare, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitter assigns sequence numbers as stages are appended.
type emitter struct {
	stages []Stage
}

func (e *emitter) add(s Stage) {
	s.Seq = len(e.stages)
	e.stages = append(e.stages, s)
}

func dedupe(names []string) []string {
	var out []string
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

package planner

import (
	"fmt"
	"log/slog"
)

// State is the planning state of one factor.
type State int

const (
	Unresolved State = iota
	DependencyResolved
	Classified
	Grouped
	Ordered
	Emitted
	Failed
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "Unresolved"
	case DependencyResolved:
		return "DependencyResolved"
	case Classified:
		return "Classified"
	case Grouped:
		return "Grouped"
	case Ordered:
		return "Ordered"
	case Emitted:
		return "Emitted"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// tracker enforces the per-factor state machine
// Unresolved -> DependencyResolved -> Classified -> Grouped -> Ordered -> Emitted,
// with Failed reachable from any non-terminal state.
type tracker struct {
	logger *slog.Logger
	order  []string
	states map[string]State
	errs   map[string]error
}

func newTracker(logger *slog.Logger, names []string) *tracker {
	t := &tracker{
		logger: logger,
		order:  append([]string(nil), names...),
		states: make(map[string]State, len(names)),
		errs:   make(map[string]error),
	}
	for _, n := range names {
		t.states[n] = Unresolved
	}
	return t
}

// advance moves one factor to the next state. Skipping a state or advancing
// an unknown or terminal factor is a programming error.
func (t *tracker) advance(name string, to State) {
	from, ok := t.states[name]
	if !ok {
		panic(fmt.Sprintf("planner: factor %q is not tracked", name))
	}
	if to != from+1 || from >= Emitted {
		panic(fmt.Sprintf("planner: illegal transition %s -> %s for factor %q", from, to, name))
	}
	t.states[name] = to
	t.logger.Debug("Plan: Factor state advanced.", "factor", name, "from", from, "to", to)
}

// advanceAll moves every tracked factor to the given state.
func (t *tracker) advanceAll(to State) {
	for _, n := range t.order {
		t.advance(n, to)
	}
}

// failAll marks every non-terminal factor as failed with err.
func (t *tracker) failAll(err error) {
	for _, n := range t.order {
		if s := t.states[n]; s == Emitted || s == Failed {
			continue
		}
		t.states[n] = Failed
		t.errs[n] = err
	}
	t.logger.Debug("Plan: Factors marked failed.", "count", len(t.order), "error", err)
}

func (t *tracker) state(name string) State {
	return t.states[name]
}

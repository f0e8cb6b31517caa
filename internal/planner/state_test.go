package planner

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	logger := slog.Default()

	t.Run("walks the full lifecycle", func(t *testing.T) {
		tr := newTracker(logger, []string{"A", "B"})
		for _, s := range []State{DependencyResolved, Classified, Grouped, Ordered} {
			tr.advanceAll(s)
		}
		tr.advance("A", Emitted)
		assert.Equal(t, Emitted, tr.state("A"))
		assert.Equal(t, Ordered, tr.state("B"))

		tr.failAll(errors.New("boom"))
		assert.Equal(t, Emitted, tr.state("A"), "emitted is terminal")
		assert.Equal(t, Failed, tr.state("B"))
	})

	t.Run("rejects skipped states", func(t *testing.T) {
		tr := newTracker(logger, []string{"A"})
		assert.Panics(t, func() { tr.advance("A", Classified) })
	})

	t.Run("rejects untracked factors", func(t *testing.T) {
		tr := newTracker(logger, []string{"A"})
		assert.Panics(t, func() { tr.advance("Z", DependencyResolved) })
	})

	t.Run("rejects leaving a terminal state", func(t *testing.T) {
		tr := newTracker(logger, []string{"A"})
		tr.failAll(errors.New("boom"))
		assert.Panics(t, func() { tr.advance("A", Failed+1) })
	})
}

func TestStateAndKindNames(t *testing.T) {
	assert.Equal(t, "DependencyResolved", DependencyResolved.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.Equal(t, "IntermediateFunc", KindIntermediateFunc.String())
	assert.Len(t, Kinds, 6)
}

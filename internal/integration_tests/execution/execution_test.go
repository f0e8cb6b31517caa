package integration_tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/factorgrid/internal/app"
	"github.com/vk/factorgrid/internal/registry"
	"github.com/vk/factorgrid/internal/resultstore"
	"github.com/vk/factorgrid/internal/testutil"
)

const catalogHCL = `
indicator "T1" {
  frequency = "daily"
  keys {
    symbol = "symbol"
    date   = "TradeDate"
  }
  columns = { close = "close" }
}

indicator "T2" {
  frequency = "intraday"
  keys {
    symbol = "symbol"
    date   = "TradeDate"
    time   = "TradeTime"
  }
  columns = { vol = "vol" }
}

class "base" {
  prepare = ["prepBase"]
}

function "prepBase" {
  kind = "prepare"
}

function "calc" {
  kind      = "compute"
  signature = "name"
}

factor "D" {
  class     = "base"
  compute   = "calc"
  frequency = "daily"
  source "T1" {
    indicators = ["close"]
  }
}

factor "E" {
  class     = "base"
  compute   = "calc"
  frequency = "intraday"
  source "T2" {
    indicators = ["vol"]
  }
}

factor "C" {
  class     = "base"
  compute   = "calc"
  frequency = "daily"
  depends_on {
    factors = ["D", "E"]
  }
}
`

// Test for: a fan-in factor starts only after all of its dependencies
// finished, while independent join-groups run concurrently.
func TestExecution_FanInSynchronization(t *testing.T) {
	// --- Arrange ---
	sleeper := testutil.NewMockSleeperModule(50*time.Millisecond, "calc")
	result := testutil.RunIntegrationTest(t, map[string]string{"catalog.hcl": catalogHCL}, sleeper)
	require.NoError(t, result.Err)

	// --- Act ---
	report, err := result.App.Simulate(context.Background(), app.Request{Factors: []string{"C"}}, app.FormatText)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, len(report.Stages), report.Count(resultstore.StatusCompleted))

	testutil.AssertRanBefore(t, sleeper, "calc(D)", "calc(C)")
	testutil.AssertRanBefore(t, sleeper, "calc(E)", "calc(C)")

	d, _ := sleeper.Record("calc(D)")
	e, _ := sleeper.Record("calc(E)")
	require.True(t, d.Start.Before(e.End) && e.Start.Before(d.End), "D and E should overlap")

	testutil.AssertStageRan(t, result, "prep:base@(T1,T2):prepBase")
	testutil.AssertStageRan(t, result, "persist:daily")
}

// Test for: a failing compute function fails its stage and skips everything
// downstream of it.
func TestExecution_FailureSkipsDependents(t *testing.T) {
	// --- Arrange ---
	boom := errors.New("division by zero")
	sleeper := testutil.NewMockSleeperModule(time.Millisecond, "calc").FailOn("calc(D)", boom)
	result := testutil.RunIntegrationTest(t, map[string]string{"catalog.hcl": catalogHCL}, sleeper)
	require.NoError(t, result.Err)

	// --- Act ---
	report, err := result.App.Simulate(context.Background(), app.Request{Factors: []string{"C", "E"}}, app.FormatText)

	// --- Assert ---
	require.ErrorIs(t, err, boom)
	require.Equal(t, resultstore.StatusFailed, testutil.StageStatus(t, report, "compute:D"))
	require.Equal(t, resultstore.StatusSkipped, testutil.StageStatus(t, report, "compute:C"))
	require.Equal(t, resultstore.StatusSkipped, testutil.StageStatus(t, report, "persist:daily"))
	require.Contains(t, result.Output(), "division by zero")

	_, ran := sleeper.Record("calc(C)")
	require.False(t, ran, "C must never run")
}

// Test for: a Go function bound under a name no manifest declares fails the
// parity check before anything runs.
func TestExecution_ParityCheck(t *testing.T) {
	// --- Arrange ---
	rogue := moduleFunc(func(r *registry.Registry) {
		r.Bind("undeclared", func(context.Context, registry.Call) (any, error) { return nil, nil })
	})
	result := testutil.RunIntegrationTest(t, map[string]string{"catalog.hcl": catalogHCL}, rogue)
	require.NoError(t, result.Err)

	// --- Act ---
	report, err := result.App.Simulate(context.Background(), app.Request{Factors: []string{"D"}}, app.FormatText)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), `"undeclared"`)
	require.Empty(t, report.Stages)
}

type moduleFunc func(r *registry.Registry)

func (f moduleFunc) Register(r *registry.Registry) { f(r) }

package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/factorgrid/internal/executor"
	"github.com/vk/factorgrid/internal/resultstore"
)

// AssertStageRan checks the log output of a harness to confirm that the
// executor picked up the stage with the given key.
func AssertStageRan(t *testing.T, result *HarnessResult, key string) {
	t.Helper()

	expectedLogSubstring := fmt.Sprintf("stage=%s", key)
	require.True(t,
		strings.Contains(result.LogOutput(), expectedLogSubstring),
		"expected log output for stage '%s' was not found in logs", key,
	)
}

// StageStatus returns the final status of a stage in a run report.
func StageStatus(t *testing.T, report *executor.Report, key string) resultstore.Status {
	t.Helper()
	for _, s := range report.Stages {
		if s.Key == key {
			return s.Status
		}
	}
	require.Failf(t, "stage not in report", "no stage %q", key)
	return resultstore.StatusPending
}

// AssertRanBefore checks that the call recorded under first finished before
// the call recorded under second started.
func AssertRanBefore(t *testing.T, m *MockSleeperModule, first, second string) {
	t.Helper()
	a, ok := m.Record(first)
	require.True(t, ok, "%s did not run", first)
	b, ok := m.Record(second)
	require.True(t, ok, "%s did not run", second)
	require.False(t, a.End.After(b.Start), "%s must finish before %s starts", first, second)
}

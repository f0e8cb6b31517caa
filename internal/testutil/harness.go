package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/factorgrid/internal/app"
	"github.com/vk/factorgrid/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test setup. App is nil
// when Err is set.
type HarnessResult struct {
	App *app.App
	Err error

	output *SafeBuffer
	logs   *SafeBuffer
}

// Output returns what the app's commands have written so far.
func (r *HarnessResult) Output() string { return r.output.String() }

// LogOutput returns the app's log output so far.
func (r *HarnessResult) LogOutput() string { return r.logs.String() }

// RunIntegrationTest writes files (relative path -> content) into a temporary
// catalog directory and builds an App over it with the given modules, or
// the core modules when none are given.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	catalogDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(catalogDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := &app.Config{
		CatalogPaths: []string{catalogDir},
		LogLevel:     "debug",
		LogFormat:    "text",
		WorkerCount:  4,
	}

	result := &HarnessResult{output: &SafeBuffer{}, logs: &SafeBuffer{}}
	result.App, result.Err = app.NewApp(result.output, result.logs, cfg, modules...)

	t.Cleanup(func() {
		if result.App != nil {
			_ = result.App.Close()
		}
		if os.Getenv("FACTORGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput())
		}
	})

	return result
}

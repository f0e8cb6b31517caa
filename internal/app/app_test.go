package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/emitter"
	"github.com/vk/factorgrid/internal/resultstore"
)

const sourcesHCL = `
indicator "day" {
  frequency = "daily"
  keys {
    symbol = "symbol"
    date   = "TradeDate"
  }
  columns = { close = "close" }
}

indicator "min" {
  frequency = "intraday"
  keys {
    symbol = "symbol"
    date   = "TradeDate"
    time   = "TradeTime"
  }
  columns = { volume = "vol" }
}

class "momentum" {
  prepare = ["prepMomentum"]
}

function "prepMomentum" {
  kind = "prepare"
}

function "calc" {
  kind      = "compute"
  signature = "params"
}

function "print" {
  kind      = "intermediate"
  signature = "name"
}
`

const factorsYAML = `
factors:
  - name: ret
    class: momentum
    compute: calc
    frequency: daily
    sources:
      - data_path: day
        indicators: [close]
  - name: flow
    class: momentum
    compute: calc
    frequency: intraday
    depends_on:
      factors: [ret]
      intermediate: [print]
    sources:
      - data_path: day
        indicators: [close]
      - data_path: min
        indicators: [volume]
`

func catalogDir(t *testing.T) string {
	return WriteCatalogFiles(t, map[string]string{
		"sources.hcl":        sourcesHCL,
		"factors/flows.yaml": factorsYAML,
		"factors/README.txt": "not a catalog file",
	})
}

func TestNewApp(t *testing.T) {
	a, _, logs := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})

	assert.Equal(t, []string{"ret", "flow"}, a.Catalog().FactorNames())
	assert.Len(t, a.Catalog().Indicators(), 2)
	assert.True(t, a.Registry().Bound("print"), "core modules bind declared functions")
	assert.False(t, a.Registry().Bound("calc"))
	assert.Contains(t, logs.String(), "All Go modules registered.")
}

func TestNewApp_Errors(t *testing.T) {
	newApp := func(paths ...string) error {
		_, err := NewApp(io.Discard, io.Discard, &Config{CatalogPaths: paths, LogLevel: "info", LogFormat: "text", WorkerCount: 1})
		return err
	}

	t.Run("missing path", func(t *testing.T) {
		assert.ErrorContains(t, newApp(filepath.Join(t.TempDir(), "nope")), "failed to load catalog")
	})

	t.Run("empty directory", func(t *testing.T) {
		assert.ErrorContains(t, newApp(t.TempDir()), "no catalog definitions found")
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := WriteCatalogFiles(t, map[string]string{"bad.hcl": `factor "x" {`})
		assert.ErrorContains(t, newApp(dir), "failed to load catalog")
	})

	t.Run("duplicate across formats", func(t *testing.T) {
		dir := WriteCatalogFiles(t, map[string]string{
			"a.hcl":  sourcesHCL,
			"b.yaml": "functions:\n  - name: calc\n    kind: compute\n",
		})
		err := newApp(dir)
		assert.ErrorContains(t, err, "failed to load catalog")
		assert.ErrorContains(t, err, `duplicate function definition "calc"`)
		assert.ErrorContains(t, err, "b.yaml")
	})

	t.Run("invalid frequency", func(t *testing.T) {
		dir := WriteCatalogFiles(t, map[string]string{
			"a.yaml": "indicators:\n  - data_path: day\n    frequency: weekly\n",
		})
		var freqErr *catalog.InvalidFrequencyTagError
		assert.True(t, errors.As(newApp(dir), &freqErr))
	})
}

func TestNewApp_MixedFormatsKeepFileOrder(t *testing.T) {
	dir := WriteCatalogFiles(t, map[string]string{
		"z_sources.hcl": sourcesHCL,
		"a.yaml":        "factors:\n  - name: x\n    class: momentum\n    compute: calc\n    frequency: daily\n",
		"b.hcl":         "factor \"y\" {\n  class     = \"momentum\"\n  compute   = \"calc\"\n  frequency = \"daily\"\n}\n",
	})

	a, _, _ := SetupAppTest(t, Config{CatalogPaths: []string{dir}})

	assert.Equal(t, []string{"x", "y"}, a.Catalog().FactorNames())
}

func TestCheck(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		a, out, _ := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})
		require.NoError(t, a.Check(context.Background()))
		assert.Equal(t, "catalog OK: 2 factors, 2 indicators, 1 classes, 3 functions, 9 stages\n", out.String())
	})

	t.Run("unknown function", func(t *testing.T) {
		dir := WriteCatalogFiles(t, map[string]string{
			"sources.hcl": sourcesHCL,
			"f.yaml":      "factors:\n  - name: x\n    class: momentum\n    compute: missing\n    frequency: daily\n",
		})
		a, _, _ := SetupAppTest(t, Config{CatalogPaths: []string{dir}})
		err := a.Check(context.Background())
		var fnErr *catalog.UnknownFunctionReferenceError
		require.True(t, errors.As(err, &fnErr), err)
		assert.Equal(t, "missing", fnErr.Name)
	})

	t.Run("cycle", func(t *testing.T) {
		dir := WriteCatalogFiles(t, map[string]string{
			"sources.hcl": sourcesHCL,
			"f.yaml": `
factors:
  - {name: a, class: momentum, compute: calc, frequency: daily, depends_on: {factors: [b]}}
  - {name: b, class: momentum, compute: calc, frequency: daily, depends_on: {factors: [a]}}
`,
		})
		a, _, _ := SetupAppTest(t, Config{CatalogPaths: []string{dir}})
		var cycleErr *catalog.DependencyCycleError
		assert.True(t, errors.As(a.Check(context.Background()), &cycleErr))
	})
}

func TestPlan(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		a, out, _ := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})
		require.NoError(t, a.Plan(context.Background(), Request{Factors: []string{"flow"}}, FormatText))

		text := out.String()
		assert.Contains(t, text, "read:(day)")
		assert.Contains(t, text, "compute:ret")
		assert.Contains(t, text, "persist:intraday")
		assert.NotContains(t, text, "persist:daily", "ret is computed but not requested")
		assert.Less(t, strings.Index(text, "compute:ret"), strings.Index(text, "compute:flow"))
	})

	t.Run("json all", func(t *testing.T) {
		a, out, _ := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})
		require.NoError(t, a.Plan(context.Background(), Request{All: true, Factors: []string{"ignored"}}, FormatJSON))

		var doc struct {
			Requested []string         `json:"requested"`
			Stages    []map[string]any `json:"stages"`
		}
		require.NoError(t, json.Unmarshal([]byte(out.String()), &doc))
		assert.Equal(t, []string{"ret", "flow"}, doc.Requested)
		assert.Equal(t, "persist:intraday", doc.Stages[len(doc.Stages)-1]["key"])
	})

	t.Run("errors", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})
		assert.ErrorContains(t, a.Plan(context.Background(), Request{}, "yaml"), "unknown output format")

		var refErr *catalog.UnknownFactorReferenceError
		assert.True(t, errors.As(a.Plan(context.Background(), Request{Factors: []string{"nope"}}, FormatText), &refErr))
	})
}

func TestGraph(t *testing.T) {
	a, out, _ := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})
	opts := emitter.DotOptions{View: emitter.ViewFactors}
	require.NoError(t, a.Graph(context.Background(), opts))

	want, err := emitter.BuildGraph(a.Catalog(), opts)
	require.NoError(t, err)
	assert.Equal(t, want.String(), out.String())
	assert.Contains(t, out.String(), "digraph")
}

func TestSimulate(t *testing.T) {
	a, out, logs := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}, WorkerCount: 3})

	report, err := a.Simulate(context.Background(), Request{All: true}, FormatText)
	require.NoError(t, err)

	t.Run("report", func(t *testing.T) {
		require.NotEmpty(t, report.Stages)
		assert.Equal(t, len(report.Stages), report.Count(resultstore.StatusCompleted))
		assert.Contains(t, out.String(), "run "+report.RunID)
		assert.Contains(t, out.String(), "0 failed, 0 skipped")
	})

	t.Run("unbound functions run as dry-run stand-ins", func(t *testing.T) {
		assert.True(t, a.Registry().Bound("calc"))
		assert.True(t, a.Registry().Bound("prepMomentum"))
		assert.Contains(t, logs.String(), "msg=print")
		assert.Contains(t, logs.String(), "factor=flow")
	})

	t.Run("metrics", func(t *testing.T) {
		n, err := testutil.GatherAndCount(a.Gatherer(), "factorgrid_executor_stages_total")
		require.NoError(t, err)
		assert.Positive(t, n)
	})

	t.Run("simulate twice", func(t *testing.T) {
		_, err := a.Simulate(context.Background(), Request{Factors: []string{"ret"}}, FormatJSON)
		require.NoError(t, err)
	})
}

func TestHealthcheckHandler(t *testing.T) {
	a, _, _ := SetupAppTest(t, Config{CatalogPaths: []string{catalogDir(t)}})
	require.NoError(t, a.Plan(context.Background(), Request{All: true}, FormatText))

	srv := httptest.NewServer(a.handler())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OK\n", string(body))
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `factorgrid_planner_plans_total{result="ok"} 1`)
		assert.Contains(t, string(body), "go_goroutines")
	})
}

package hcl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/factorgrid/internal/catalog"
	"github.com/zclconf/go-cty/cty"
)

const indicatorsHCL = `
indicator "stockDayKBar" {
  frequency = "day"
  location {
    namespace = "dfs://Daykbar"
    table     = "pt"
  }
  keys {
    symbol = "symbol"
    date   = "TradeDate"
  }
  columns = { close = "close", volume = "vol" }
}

indicator "stockMin1KBar" {
  frequency = "minute"
  keys {
    symbol = "symbol"
    date   = "TradeDate"
    time   = "TradeTime"
  }
  columns = { close = "close" }
}
`

const factorsHCL = `
class "shio" {
  prepare = ["shioPrepare"]
}

function "get_shio" {
  kind      = "compute"
  signature = "params"
}

function "shioPrepare" {
  kind = "prepare"
}

factor "shio" {
  class     = "shio"
  compute   = "get_shio"
  frequency = "daily"
  depends_on {
    factors      = ["base"]
    intermediate = ["smooth"]
  }
  source "stockMin1KBar" {
    indicators = ["close"]
  }
  source "stockDayKBar" {
    indicators = ["close", "volume"]
  }
  params = {
    callBackPeriod = 5
    label          = "x"
    flags          = [true, false]
  }
}

factor "base" {
  class     = "shio"
  compute   = "get_shio"
  frequency = "intraday"
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_indicators.hcl", indicatorsHCL)
	writeFile(t, dir, "factors/b_factors.hcl", factorsHCL)
	writeFile(t, dir, "notes.txt", "ignored")

	cat, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, cat.Validate())

	assert.Equal(t, []string{"shio", "base"}, cat.FactorNames())

	day, ok := cat.Indicator("stockDayKBar")
	require.True(t, ok)
	assert.Equal(t, catalog.Daily, day.Frequency)
	assert.Equal(t, catalog.Location{Namespace: "dfs://Daykbar", Table: "pt"}, day.Location)
	assert.Equal(t, catalog.Keys{Symbol: "symbol", Date: "TradeDate"}, day.Keys)
	assert.Equal(t, map[string]string{"close": "close", "volume": "vol"}, day.Columns)

	minute, ok := cat.Indicator("stockMin1KBar")
	require.True(t, ok)
	assert.Equal(t, catalog.Intraday, minute.Frequency)
	assert.Equal(t, "TradeTime", minute.Keys.Time)

	shio, ok := cat.Factor("shio")
	require.True(t, ok)
	assert.Equal(t, "shio", shio.Class)
	assert.Equal(t, "get_shio", shio.ComputeFunc)
	assert.Equal(t, catalog.Daily, shio.Frequency)
	assert.Equal(t, []string{"base"}, shio.DependsOn.Factors)
	assert.Equal(t, []string{"smooth"}, shio.DependsOn.IntermediateFuncs)
	assert.Equal(t, []string{"stockMin1KBar", "stockDayKBar"}, shio.DataPaths())
	assert.Equal(t, []string{"close", "volume"}, shio.IndicatorsFor("stockDayKBar"))
	assert.Equal(t, map[string]any{
		"callBackPeriod": float64(5),
		"label":          "x",
		"flags":          []any{true, false},
	}, shio.Params)
	assert.Equal(t, filepath.Join(dir, "factors", "b_factors.hcl"), shio.Origin)

	base, _ := cat.Factor("base")
	assert.Nil(t, base.Params)
	assert.Empty(t, base.Sources)

	fn, ok := cat.Function("get_shio")
	require.True(t, ok)
	assert.Equal(t, catalog.KindCompute, fn.Kind)
	assert.Equal(t, catalog.SignatureParams, fn.Signature)

	assert.Equal(t, []string{"shioPrepare"}, cat.PrepareFuncs("shio"))
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.hcl", `factor "x" {`)
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, "failed to parse HCL file")
	})

	t.Run("unknown block", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.hcl", `step "x" {}`)
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, "failed to decode HCL file")
	})

	t.Run("invalid frequency tag", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.hcl", `
factor "x" {
  class     = "k"
  compute   = "f"
  frequency = "weekly"
}
`)
		_, err := NewLoader().Load(ctx, dir)
		var freqErr *catalog.InvalidFrequencyTagError
		require.True(t, errors.As(err, &freqErr))
		assert.Equal(t, "weekly", freqErr.Value)
		assert.Equal(t, `factor "x"`, freqErr.Owner)
	})

	t.Run("duplicate across files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", indicatorsHCL)
		writeFile(t, dir, "b.hcl", indicatorsHCL)
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, `duplicate indicator definition "stockDayKBar"`)
	})

	t.Run("params must be an object", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.hcl", `
factor "x" {
  class     = "k"
  compute   = "f"
  frequency = "daily"
  params    = "nope"
}
`)
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, "params must be an object")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "absent"))
		assert.ErrorContains(t, err, "error accessing path")
	})
}

func TestCtyToNative(t *testing.T) {
	v := cty.ObjectVal(map[string]cty.Value{
		"n":    cty.NumberIntVal(3),
		"s":    cty.StringVal("a"),
		"list": cty.ListVal([]cty.Value{cty.StringVal("x")}),
		"null": cty.NullVal(cty.String),
	})
	got, err := ctyToNative(v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":    float64(3),
		"s":    "a",
		"list": []any{"x"},
		"null": nil,
	}, got)

	params, err := paramsFromValue(cty.NullVal(cty.DynamicPseudoType))
	require.NoError(t, err)
	assert.Nil(t, params)
}

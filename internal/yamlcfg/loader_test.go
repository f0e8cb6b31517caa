package yamlcfg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/factorgrid/internal/catalog"
)

const catalogYAML = `
indicators:
  - data_path: stockDayKBar
    frequency: day
    location: {namespace: "dfs://Daykbar", table: pt}
    keys: {symbol: symbol, date: TradeDate}
    columns: {close: close, volume: vol}
classes:
  - name: shio
    prepare: [shioPrepare]
functions:
  - name: get_shio
    kind: compute
    signature: params
  - name: shioPrepare
    kind: prepare
factors:
  - name: shio
    class: shio
    compute: get_shio
    frequency: daily
    depends_on:
      factors: [base]
    sources:
      - data_path: stockDayKBar
        indicators: [close, volume]
    params:
      window: 20
      ratio: 0.5
      nested: {levels: [1, 2]}
`

const baseJSON = `{
  "factors": [
    {"name": "base", "class": "shio", "compute": "get_shio", "frequency": "min"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", catalogYAML)
	writeFile(t, dir, "b.json", baseJSON)
	writeFile(t, dir, "c.hcl", `factor "ignored" {}`)

	cat, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, cat.Validate())

	assert.Equal(t, []string{"shio", "base"}, cat.FactorNames())

	ind, ok := cat.Indicator("stockDayKBar")
	require.True(t, ok)
	assert.Equal(t, catalog.Daily, ind.Frequency)
	assert.Equal(t, "pt", ind.Location.Table)
	assert.Equal(t, []string{catalog.KeySymbol, catalog.KeyDate}, ind.Keys.Kinds())

	shio, _ := cat.Factor("shio")
	assert.Equal(t, []string{"base"}, shio.DependsOn.Factors)
	assert.Equal(t, []string{"stockDayKBar"}, shio.DataPaths())
	assert.Equal(t, map[string]any{
		"window": float64(20),
		"ratio":  0.5,
		"nested": map[string]any{"levels": []any{float64(1), float64(2)}},
	}, shio.Params)

	base, _ := cat.Factor("base")
	assert.Equal(t, catalog.Intraday, base.Frequency)
	assert.Equal(t, filepath.Join(dir, "b.json"), base.Origin)

	assert.Equal(t, []string{"shioPrepare"}, cat.PrepareFuncs("shio"))
}

func TestLoader_MultipleDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "multi.yml", `
functions:
  - {name: f, kind: compute}
---
functions:
  - {name: g, kind: intermediate, signature: name}
`)
	cat, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	g, ok := cat.Function("g")
	require.True(t, ok)
	assert.Equal(t, catalog.KindIntermediate, g.Kind)
	assert.Equal(t, catalog.SignatureName, g.Signature)
	assert.Len(t, cat.Functions(), 2)
}

func TestLoader_DependencyShorthand(t *testing.T) {
	cases := []struct {
		name      string
		dependsOn string
		factors   []string
		mids      []string
	}{
		{name: "lists", dependsOn: "{factors: [a, b], intermediate: [m]}", factors: []string{"a", "b"}, mids: []string{"m"}},
		{name: "bare names", dependsOn: "{factors: a, intermediate: m}", factors: []string{"a"}, mids: []string{"m"}},
		{name: "nulls", dependsOn: "{factors: null, intermediate: ~}"},
		{name: "empty string", dependsOn: `{factors: ""}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat := catalog.New()
			src := "factors:\n  - {name: x, class: k, compute: f, frequency: d, depends_on: " + tc.dependsOn + "}\n"
			require.NoError(t, NewLoader().ParseFile(context.Background(), cat, "deps.yaml", []byte(src)))

			def, ok := cat.Factor("x")
			require.True(t, ok)
			assert.Equal(t, tc.factors, def.DependsOn.Factors)
			assert.Equal(t, tc.mids, def.DependsOn.IntermediateFuncs)
		})
	}

	t.Run("json string", func(t *testing.T) {
		cat := catalog.New()
		src := `{"factors": [{"name": "x", "class": "k", "compute": "f", "frequency": "d", "depends_on": {"factors": "a"}}]}`
		require.NoError(t, NewLoader().ParseFile(context.Background(), cat, "deps.json", []byte(src)))
		def, _ := cat.Factor("x")
		assert.Equal(t, []string{"a"}, def.DependsOn.Factors)
	})

	t.Run("number is rejected", func(t *testing.T) {
		src := "factors:\n  - {name: x, class: k, compute: f, frequency: d, depends_on: {factors: 7}}\n"
		err := NewLoader().ParseFile(context.Background(), catalog.New(), "deps.yaml", []byte(src))
		assert.ErrorContains(t, err, "expected a name or a list of names")
	})
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown field", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "steps: []\n")
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, "failed to decode catalog file")
	})

	t.Run("invalid frequency tag", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "factors:\n  - {name: x, class: k, compute: f, frequency: weekly}\n")
		_, err := NewLoader().Load(ctx, dir)
		var freqErr *catalog.InvalidFrequencyTagError
		require.True(t, errors.As(err, &freqErr))
		assert.Equal(t, "weekly", freqErr.Value)
	})

	t.Run("invalid function kind", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "functions:\n  - {name: x, kind: lambda}\n")
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, `function "x"`)
	})

	t.Run("duplicate factor", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.json", baseJSON)
		writeFile(t, dir, "b.json", baseJSON)
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, `duplicate factor definition "base"`)
	})

	t.Run("empty file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "empty.yaml", "")
		cat, err := NewLoader().Load(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 0, cat.Len())
	})
}

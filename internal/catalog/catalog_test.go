package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		tag  string
		want Frequency
	}{
		{"daily", Daily},
		{"day", Daily},
		{"D", Daily},
		{"intraday", Intraday},
		{"minute", Intraday},
		{" Min ", Intraday},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseFrequency("factor \"x\"", tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		_, err := ParseFrequency("indicator \"bars\"", "weekly")
		var freqErr *InvalidFrequencyTagError
		require.True(t, errors.As(err, &freqErr))
		assert.Equal(t, "weekly", freqErr.Value)
		assert.Equal(t, "indicator \"bars\"", freqErr.Owner)
		assert.ErrorContains(t, err, "invalid frequency tag \"weekly\"")
	})
}

func TestParseFunctionKindAndSignature(t *testing.T) {
	kind, err := ParseFunctionKind("prep")
	require.NoError(t, err)
	assert.Equal(t, KindPrepare, kind)

	_, err = ParseFunctionKind("reduce")
	assert.ErrorContains(t, err, "invalid function kind")

	sig, err := ParseSignature("")
	require.NoError(t, err)
	assert.Equal(t, SignatureNone, sig)

	sig, err = ParseSignature("Params")
	require.NoError(t, err)
	assert.Equal(t, SignatureParams, sig)

	_, err = ParseSignature("varargs")
	assert.ErrorContains(t, err, "invalid function signature")
}

func TestCatalog_OrderAndLookup(t *testing.T) {
	c := New()
	require.NoError(t, c.AddFactor(&FactorDefinition{Name: "b", Class: "k", ComputeFunc: "f", Frequency: Daily}))
	require.NoError(t, c.AddFactor(&FactorDefinition{Name: "a", Class: "k", ComputeFunc: "f", Frequency: Daily}))
	require.NoError(t, c.AddClass(&ClassDefinition{Name: "k", Prepare: []string{"p1", "p2"}}))

	assert.Equal(t, []string{"b", "a"}, c.FactorNames())
	assert.Equal(t, 0, c.Index("b"))
	assert.Equal(t, 1, c.Index("a"))
	assert.Equal(t, -1, c.Index("zzz"))
	assert.Equal(t, 2, c.Len())

	def, ok := c.Factor("a")
	require.True(t, ok)
	assert.Equal(t, "a", def.Name)

	assert.Equal(t, []string{"p1", "p2"}, c.PrepareFuncs("k"))
	assert.Nil(t, c.PrepareFuncs("undeclared"))
}

func TestCatalog_Duplicates(t *testing.T) {
	c := New()
	require.NoError(t, c.AddFactor(&FactorDefinition{Name: "a", Origin: "one.hcl"}))
	err := c.AddFactor(&FactorDefinition{Name: "a", Origin: "two.hcl"})
	assert.EqualError(t, err, `duplicate factor definition "a" (first in one.hcl, again in two.hcl)`)

	require.NoError(t, c.AddIndicator(&IndicatorDefinition{DataPath: "bars"}))
	assert.EqualError(t, c.AddIndicator(&IndicatorDefinition{DataPath: "bars"}), `duplicate indicator definition "bars"`)
}

func TestFactorDefinition_Sources(t *testing.T) {
	f := &FactorDefinition{Sources: []Source{
		{DataPath: "day", Indicators: []string{"close"}},
		{DataPath: "min", Indicators: []string{"volume", "close"}},
	}}
	assert.Equal(t, []string{"day", "min"}, f.DataPaths())
	assert.Equal(t, []string{"volume", "close"}, f.IndicatorsFor("min"))
	assert.Nil(t, f.IndicatorsFor("other"))
}

func TestKeys(t *testing.T) {
	k := Keys{Symbol: "code", Time: "ts"}
	assert.Equal(t, []string{KeySymbol, KeyTime}, k.Kinds())
	assert.Equal(t, "code", k.Column(KeySymbol))
	assert.Equal(t, "", k.Column(KeyDate))
}

func TestCatalog_Validate(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddIndicator(&IndicatorDefinition{
			DataPath:  "bars",
			Frequency: Daily,
			Keys:      Keys{Symbol: "symbol", Date: "date"},
			Columns:   map[string]string{"close": "close"},
		}))
		require.NoError(t, c.AddFunction(&FunctionDefinition{Name: "calc", Kind: KindCompute}))
		require.NoError(t, c.AddFactor(&FactorDefinition{
			Name: "a", Class: "k", ComputeFunc: "calc", Frequency: Daily,
			Sources: []Source{{DataPath: "bars", Indicators: []string{"close"}}},
		}))
		assert.NoError(t, c.Validate())
	})

	t.Run("reports every problem", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddIndicator(&IndicatorDefinition{DataPath: "bars", Frequency: Daily}))
		require.NoError(t, c.AddFactor(&FactorDefinition{
			Name: "bad name", Class: "k", Frequency: Daily,
			Sources: []Source{{DataPath: "bars"}, {DataPath: "bars"}},
		}))

		err := c.Validate()
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, `indicator "bars": field Columns failed "min"`)
		assert.Contains(t, msg, `field Name failed "identifier"`)
		assert.Contains(t, msg, `field ComputeFunc failed "required"`)
		assert.Contains(t, msg, `declares data path "bars" more than once`)
	})
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&DependencyCycleError{Path: []string{"A", "B", "A"}}, "dependency cycle detected: A -> B -> A"},
		{&UnknownFactorReferenceError{Name: "X"}, `unknown factor "X"`},
		{&UnknownFactorReferenceError{Name: "X", ReferencedBy: "A"}, `factor "A" depends on unknown factor "X"`},
		{&UnknownFunctionReferenceError{Name: "f", Kind: KindIntermediate, Factor: "A"}, `factor "A" references unknown intermediate function "f"`},
		{&MissingDataPathError{Factor: "A", DataPath: "p"}, `factor "A" resolves data path "p", which is not in the indicator catalog`},
		{&JoinKeyError{Group: "(p,q)", Left: "p", Right: "q"}, `join group (p,q): data path "q" shares no join key with "p"`},
	}
	for _, tt := range tests {
		assert.EqualError(t, tt.err, tt.want)
	}
}

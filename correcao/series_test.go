package correcao_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// SHAPE NORMALIZATION
// =============================================================================

func TestLoadSeries_ShapesAgree(t *testing.T) {
	// The same variation expressed four ways must normalize identically:
	// shape A fraction, shape B factor, shape B fraction, shape B percent.
	shapeA := "indice,ano,mes,variacao_mensal\nIPCA-E,2023,1,0.0043\n"
	shapeBFactor := "data,fator\n2023-01,1.0043\n"
	shapeBFraction := "data,fator\n2023-01,0.0043\n"
	shapeBPercent := "data,fator\n2023-01,\"0,43%\"\n"

	want := dec("0.0043")
	for name, csv := range map[string]string{
		"shape A":          shapeA,
		"shape B factor":   shapeBFactor,
		"shape B fraction": shapeBFraction,
		"shape B percent":  shapeBPercent,
	} {
		s, err := correcao.LoadSeries(strings.NewReader(csv))
		require.NoError(t, err, name)
		got, ok := s.Fraction(mk(2023, 1))
		require.True(t, ok, name)
		assert.True(t, got.Equal(want), "%s: fraction = %s, want %s", name, got, want)
	}
}

func TestLoadSeries_DecimalCommaInShapeA(t *testing.T) {
	s, err := correcao.LoadSeries(strings.NewReader("indice,ano,mes,variacao_mensal\nIPCA-E,2023,2,\"0,0065\"\n"))
	require.NoError(t, err)
	got, ok := s.Fraction(mk(2023, 2))
	require.True(t, ok)
	assert.True(t, got.Equal(dec("0.0065")))
}

func TestLoadSeries_NegativeVariation(t *testing.T) {
	// Deflation months exist in the published series (e.g. mid-2022).
	s, err := correcao.LoadSeries(strings.NewReader("data,fator\n2022-08,\"-0,73%\"\n"))
	require.NoError(t, err)
	got, ok := s.Fraction(mk(2022, 8))
	require.True(t, ok)
	assert.True(t, got.Equal(dec("-0.0073")), "got %s", got)
}

func TestLoadSeries_LastMonth(t *testing.T) {
	csv := "data,fator\n2024-01,1.0042\n2024-03,1.0016\n2024-02,1.0083\n"
	s, err := correcao.LoadSeries(strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, s.LastMonth().Equal(mk(2024, 3)))
	assert.Equal(t, 3, s.Len())
}

// =============================================================================
// REJECTED INPUT
// =============================================================================

func TestLoadSeries_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown header":       "foo,bar\n1,2\n",
		"empty series":         "data,fator\n",
		"non-numeric fraction": "indice,ano,mes,variacao_mensal\nIPCA-E,2023,1,abc\n",
		"malformed month":      "indice,ano,mes,variacao_mensal\nIPCA-E,2023,13,0.004\n",
		"malformed data":       "data,fator\n2023/01,1.0043\n",
		"conflicting dup":      "data,fator\n2023-01,1.0043\n2023-01,1.0099\n",
	}
	for name, csv := range cases {
		_, err := correcao.LoadSeries(strings.NewReader(csv))
		assert.ErrorIs(t, err, correcao.ErrParse, name)
	}
}

func TestLoadSeries_RestatedDuplicateTolerated(t *testing.T) {
	// Concatenated exports often overlap; identical restatements are fine.
	csv := "data,fator\n2023-01,1.0043\n2023-01,1.0043\n"
	s, err := correcao.LoadSeries(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

package indices_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisa/precatorio/correcao"
	"github.com/revisa/precatorio/indices"
)

// A trimmed replica of the legacy "xls": an HTML document whose table has
// the year only on January rows, Portuguese month names, an index-number
// column and the percent variation column.
const serieHistHTML = `<html><body><table>
<tr><th>ANO</th><th>M&Ecirc;S</th><th>N&Uacute;MERO &Iacute;NDICE</th><th>(%)</th></tr>
<tr><td>2021</td><td>NOV</td><td>6010.23</td><td>1,17</td></tr>
<tr><td></td><td>DEZ</td><td>6055.31</td><td>0,78</td></tr>
<tr><td>2022</td><td>JAN</td><td>6090.43</td><td>0,58</td></tr>
<tr><td></td><td>FEV</td><td>6150.12</td><td>0,99</td></tr>
<tr><td></td><td>AGOSTO</td><td>6101.55</td><td>&minus;0,73</td></tr>
<tr><td colspan="4">FONTE: IBGE</td></tr>
</table></body></html>`

func TestConvertHTML(t *testing.T) {
	rows, err := indices.ConvertHTML(strings.NewReader(serieHistHTML), indices.DefaultConvertOptions())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	byMonth := map[string]decimal.Decimal{}
	for _, r := range rows {
		assert.Equal(t, "IPCA-E", r.Indice)
		byMonth[r.Month.String()] = r.Variacao
	}

	// Year carry-forward: DEZ inherits 2021, FEV/AGOSTO inherit 2022.
	assert.True(t, byMonth["2021-12"].Equal(decimal.RequireFromString("0.0078")), "got %s", byMonth["2021-12"])
	assert.True(t, byMonth["2022-02"].Equal(decimal.RequireFromString("0.0099")))

	// Typographic minus normalizes; deflation stays negative.
	assert.True(t, byMonth["2022-08"].Equal(decimal.RequireFromString("-0.0073")), "got %s", byMonth["2022-08"])
}

func TestConvertHTML_NoSeriesRows(t *testing.T) {
	_, err := indices.ConvertHTML(strings.NewReader("<html><body><p>vazio</p></body></html>"), indices.DefaultConvertOptions())
	assert.Error(t, err)
}

func TestParsePercentFraction(t *testing.T) {
	cases := map[string]string{
		"0,21":    "0.0021",
		"0,21 %":  "0.0021",
		"0.21%":   "0.0021",
		"-0,22":   "-0.0022",
		"−0,22":   "-0.0022", // typographic minus
		"1,17":    "0.0117",
		"0.0032":  "0.0032", // already a fraction
		"1.234,5": "12.345", // thousands dot under a comma decimal
	}
	for in, want := range cases {
		got, err := indices.ParsePercentFraction(in)
		require.NoError(t, err, "input %q", in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "input %q: got %s, want %s", in, got, want)
	}

	_, err := indices.ParsePercentFraction("")
	assert.Error(t, err)
	_, err = indices.ParsePercentFraction("n/d")
	assert.Error(t, err)
}

func TestWriteCSV_LoadsBackIntoEngine(t *testing.T) {
	// The emitted shape-A CSV must be loadable by the engine unchanged.
	rows, err := indices.ConvertHTML(strings.NewReader(serieHistHTML), indices.DefaultConvertOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, indices.WriteCSV(&buf, rows))

	serie, err := correcao.LoadSeries(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5, serie.Len())
	assert.True(t, serie.LastMonth().Equal(correcao.NewMonthKey(2022, 8)))

	frac, ok := serie.Fraction(correcao.NewMonthKey(2021, 11))
	require.True(t, ok)
	assert.True(t, frac.Equal(decimal.RequireFromString("0.0117")))
}

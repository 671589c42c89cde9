package batch_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisa/precatorio/batch"
	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *batch.Store {
	t.Helper()
	store, err := batch.Open("sqlite3", filepath.Join(t.TempDir(), "batch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testSerie(t *testing.T) *correcao.IndexSeries {
	t.Helper()
	var b strings.Builder
	b.WriteString("indice,ano,mes,variacao_mensal\n")
	cur := correcao.NewMonthKey(2019, 7)
	for !cur.After(correcao.NewMonthKey(2024, 6)) {
		fmt.Fprintf(&b, "IPCA-E,%d,%d,0.005\n", cur.Year, int(cur.Month))
		cur = cur.Next()
	}
	serie, err := correcao.LoadSeries(strings.NewReader(b.String()))
	require.NoError(t, err)
	return serie
}

func nstr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// =============================================================================
// RUNNER
// =============================================================================

func TestRunner_ProcessesPendingRows(t *testing.T) {
	// GIVEN: Two pending rows with scraped pt-BR money formatting
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InserirProcesso(ctx, batch.Processo{
		ID:                1,
		CPF:               nstr("111.222.333-44"),
		NumeroProcessoCNJ: nstr("0001234-56.2008.8.26.0500"),
		Principal:         nstr("R$ 1.097.665,34"),
		DataBase:          nstr("2020-07-15"),
		JurosMora:         nstr("471.676,23"),
	}))
	require.NoError(t, store.InserirProcesso(ctx, batch.Processo{
		ID:                2,
		CPF:               nstr("555.666.777-88"),
		NumeroProcessoCNJ: nstr("0009876-54.2010.8.26.0500"),
		Principal:         nstr("250000.00"),
		DataBase:          nstr("2021"),
		JurosMora:         nstr(""),
	}))

	runner := &batch.Runner{
		Store:   store,
		Engine:  correcao.Engine{Serie: testSerie(t)},
		Workers: 2,
	}

	// WHEN: Running the batch
	summary, err := runner.Run(ctx, batch.RunOptions{})
	require.NoError(t, err)

	// THEN: Both rows processed, nothing pending, resumo populated
	assert.Equal(t, 2, summary.Processados)
	assert.Equal(t, 0, summary.Falhas)

	pending, err := store.Pendentes(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunner_RowFailureDoesNotAbortRun(t *testing.T) {
	// GIVEN: One good row and one with an unusable base date
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InserirProcesso(ctx, batch.Processo{
		ID: 1, CPF: nstr("1"), NumeroProcessoCNJ: nstr("a"),
		Principal: nstr("1000,00"), DataBase: nstr("sem data"), JurosMora: nstr("0"),
	}))
	require.NoError(t, store.InserirProcesso(ctx, batch.Processo{
		ID: 2, CPF: nstr("2"), NumeroProcessoCNJ: nstr("b"),
		Principal: nstr("1000,00"), DataBase: nstr("2020-01-01"), JurosMora: nstr("0"),
	}))

	runner := &batch.Runner{Store: store, Engine: correcao.Engine{Serie: testSerie(t)}}
	summary, err := runner.Run(ctx, batch.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processados)
	assert.Equal(t, 1, summary.Falhas)

	// The failed row stays pending for the next run.
	pending, err := store.Pendentes(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
}

func TestRunner_SpecificID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.InserirProcesso(ctx, batch.Processo{
			ID: i, CPF: nstr("x"), NumeroProcessoCNJ: nstr("y"),
			Principal: nstr("100,00"), DataBase: nstr("2020-01-01"), JurosMora: nstr("0"),
		}))
	}

	runner := &batch.Runner{Store: store, Engine: correcao.Engine{Serie: testSerie(t)}}
	summary, err := runner.Run(ctx, batch.RunOptions{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processados)

	pending, err := store.Pendentes(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

// =============================================================================
// NORMALIZATION HELPERS
// =============================================================================

func TestNormalizarMoeda(t *testing.T) {
	cases := map[string]string{
		"R$ 1.234,56":  "1234.56",
		"1.097.665,34": "1097665.34",
		"1234.56":      "1234.56",
		"471676,23":    "471676.23",
		"":             "0",
	}
	for in, want := range cases {
		got, err := batch.NormalizarMoeda(in)
		require.NoError(t, err, "input %q", in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "input %q: got %s", in, got)
	}

	_, err := batch.NormalizarMoeda("abc")
	assert.Error(t, err)
}

func TestAnoBase(t *testing.T) {
	for in, want := range map[string]int{
		"2008-07-15": 2008,
		"2008":       2008,
		"2008.0":     2008,
	} {
		got, err := batch.AnoBase(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := batch.AnoBase("sem data")
	assert.Error(t, err)
}

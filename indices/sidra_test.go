package indices_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revisa/precatorio/indices"
)

const sidraPayload = `[
  {"D1C":"Brasil","D2C":"Variável","D3C":"Mês","V":"Valor"},
  {"D1C":"1","D2C":"306","D3C":"202111","V":"1.17"},
  {"D1C":"1","D2C":"306","D3C":"202112","V":"0.78"},
  {"D1C":"1","D2C":"306","D3C":"202201","V":"0.58"},
  {"D1C":"1","D2C":"306","D3C":"202202","V":"..."}
]`

func TestSidraClient_FetchMonthly(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sidraPayload))
	}))
	defer srv.Close()

	c := indices.NewSidraClient(zap.NewNop())
	c.BaseURL = srv.URL
	c.Client = srv.Client()

	rows, err := c.FetchMonthly(context.Background(), nil, nil)
	require.NoError(t, err)

	// table 1453, variable 306, whole period
	assert.Equal(t, "/values/t/1453/n1/all/v/306/p/all", gotPath)

	// the "..." month is skipped, the rest convert percent -> fraction
	require.Len(t, rows, 3)
	assert.Equal(t, "2021-11", rows[0].Month.String())
	assert.True(t, rows[0].Variacao.Equal(decimal.RequireFromString("0.0117")), "got %s", rows[0].Variacao)
	assert.True(t, rows[2].Variacao.Equal(decimal.RequireFromString("0.0058")))
}

func TestSidraClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "indisponivel", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := indices.NewSidraClient(nil)
	c.BaseURL = srv.URL
	c.Client = srv.Client()

	_, err := c.FetchMonthly(context.Background(), nil, nil)
	assert.Error(t, err)
}

/*
sidra.go - SIDRA API client for the IPCA-E monthly variation

PURPOSE:
  The non-spreadsheet acquisition path: table 1453 of the IBGE SIDRA
  values API carries the IPCA-E monthly percent variation (variable 306)
  at the national level. One GET returns the whole series as JSON.

WIRE FORMAT:
  The values endpoint answers a JSON array whose first element is a header
  (column code -> label); each following element is one observation with
  "V" (value, percent, dot decimal) and "D3C" (period code "YYYYMM").
  "..." and "-" mark months without a published value.
*/
package indices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/revisa/precatorio/correcao"
)

const defaultSidraBaseURL = "https://apisidra.ibge.gov.br"

// SidraClient fetches the IPCA-E series from the SIDRA values API.
type SidraClient struct {
	BaseURL string
	Client  *http.Client
	Log     *zap.Logger
}

// NewSidraClient builds a client against the public API.
func NewSidraClient(log *zap.Logger) *SidraClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &SidraClient{BaseURL: defaultSidraBaseURL, Client: http.DefaultClient, Log: log}
}

// FetchMonthly retrieves the monthly variation series. A nil from/to
// fetches everything the table has.
func (c *SidraClient) FetchMonthly(ctx context.Context, from, to *correcao.MonthKey) ([]Row, error) {
	period := "all"
	if from != nil && to != nil {
		period = fmt.Sprintf("%04d%02d-%04d%02d", from.Year, int(from.Month), to.Year, int(to.Month))
	}
	url := fmt.Sprintf("%s/values/t/1453/n1/all/v/306/p/%s?formato=json", c.BaseURL, period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("consulta SIDRA: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("consulta SIDRA: %s", resp.Status)
	}

	var payload []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("resposta SIDRA ilegivel: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("resposta SIDRA sem observacoes")
	}

	rows := make([]Row, 0, len(payload)-1)
	for _, obs := range payload[1:] { // first element is the header
		raw, code := obs["V"], obs["D3C"]
		if raw == "" || raw == "..." || raw == "-" {
			c.Log.Debug("mes sem valor publicado", zap.String("periodo", code))
			continue
		}
		mk, err := parsePeriodCode(code)
		if err != nil {
			return nil, err
		}
		pct, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("valor SIDRA ilegivel para %s: %q", mk, raw)
		}
		rows = append(rows, Row{
			Indice:   "IPCA-E",
			Month:    mk,
			Variacao: pct.Div(decimal.NewFromInt(100)),
		})
	}

	c.Log.Info("serie obtida do SIDRA", zap.Int("meses", len(rows)))
	return rows, nil
}

// parsePeriodCode converts the "YYYYMM" period code into a MonthKey.
func parsePeriodCode(code string) (correcao.MonthKey, error) {
	if len(code) != 6 {
		return correcao.MonthKey{}, fmt.Errorf("periodo SIDRA invalido: %q", code)
	}
	year, err := strconv.Atoi(code[:4])
	if err != nil {
		return correcao.MonthKey{}, fmt.Errorf("periodo SIDRA invalido: %q", code)
	}
	month, err := strconv.Atoi(code[4:])
	if err != nil || month < 1 || month > 12 {
		return correcao.MonthKey{}, fmt.Errorf("periodo SIDRA invalido: %q", code)
	}
	return correcao.NewMonthKey(year, month), nil
}

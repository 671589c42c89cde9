/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the correcao domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

WIRE FORMAT:
  Monetary amounts and factors travel as STRINGS, never JSON numbers.
  JSON numbers are binary floats and cannot represent values like 0.0043
  or 1234.56 exactly; decimal strings keep the contract exact in both
  directions.

TYPES:
  Calculation:
    CalcularRequest, CalcularResponse, TraceLine

  Errors:
    ErrorResponse

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - correcao/engine.go: Request/Result domain types
*/
package api

import (
	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CalcularRequest is the body of POST /api/calcular.
type CalcularRequest struct {
	Principal       string `json:"principal"`
	AnoVenc         int    `json:"ano_venc"`
	AntesMode       string `json:"antes_mode,omitempty"`
	JurosMoraAnt    string `json:"juros_mora_ant,omitempty"`
	PosFim          string `json:"pos_fim,omitempty"` // "YYYY-MM"
	ClipPos         bool   `json:"clip_pos,omitempty"`
	OverrideAntes   string `json:"override_antes,omitempty"`
	OverridePosIPCA string `json:"override_pos_ipca,omitempty"`
	JurosAAPos      string `json:"juros_aa_pos,omitempty"`
	Trace           bool   `json:"trace,omitempty"`
	Relatorio       bool   `json:"relatorio,omitempty"`
}

// CalcularResponse carries the full calculation output.
type CalcularResponse struct {
	AntesInicio string `json:"antes_inicio"`
	AntesFim    string `json:"antes_fim"`
	PosInicio   string `json:"pos_inicio"`
	PosFim      string `json:"pos_fim"`

	FatorIPCAEAntes      string `json:"fator_ipcae_antes"`
	FatorIPCAEPos        string `json:"fator_ipcae_pos"`
	FatorJuros2aaSimples string `json:"fator_juros_2aa_simples"`

	MesesAntes   int `json:"meses_antes"`
	MesesPos     int `json:"meses_pos"`
	MesesPara2aa int `json:"meses_para_2aa"`

	PrincipalOriginal       string `json:"principal_original"`
	PrincipalAposAntes      string `json:"principal_apos_antes"`
	PrincipalPosIPCA        string `json:"principal_pos_ipca"`
	PrincipalFinalIPCA2aa   string `json:"principal_final_ipca_2aa"`
	JurosMoraAnterioresBase string `json:"juros_mora_anteriores_base"`
	JurosMoraAposAntes      string `json:"juros_mora_apos_antes"`
	JurosMoraFinalCorrigido string `json:"juros_mora_final_corrigido"`
	TotalCorrigido          string `json:"total_corrigido"`

	TraceAntes []TraceLine `json:"trace_antes,omitempty"`
	TracePos   []TraceLine `json:"trace_pos,omitempty"`

	Relatorio string `json:"relatorio,omitempty"`
}

// TraceLine is one month of the detailed factor accumulation.
type TraceLine struct {
	Mes       string `json:"mes"`
	Variacao  string `json:"variacao"`
	Acumulado string `json:"acumulado"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Erro string `json:"erro"`
	Code string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toResponse(res *correcao.Result, withReport bool) CalcularResponse {
	out := CalcularResponse{
		AntesInicio: res.Windows.Antes.Start.String(),
		AntesFim:    res.Windows.Antes.End.String(),
		PosInicio:   res.Windows.Pos.Start.String(),
		PosFim:      res.Windows.Pos.End.String(),

		FatorIPCAEAntes:      res.FatorIPCAEAntes.StringFixed(8),
		FatorIPCAEPos:        res.FatorIPCAEPos.StringFixed(8),
		FatorJuros2aaSimples: res.FatorJuros2aaSimples.StringFixed(8),

		MesesAntes:   res.MesesAntes,
		MesesPos:     res.MesesPos,
		MesesPara2aa: res.MesesPara2aa,

		PrincipalOriginal:       res.PrincipalOriginal.StringFixed(2),
		PrincipalAposAntes:      res.PrincipalAposAntes.StringFixed(2),
		PrincipalPosIPCA:        res.PrincipalPosIPCA.StringFixed(2),
		PrincipalFinalIPCA2aa:   res.PrincipalFinalIPCA2aa.StringFixed(2),
		JurosMoraAnterioresBase: res.JurosMoraAnterioresBase.StringFixed(2),
		JurosMoraAposAntes:      res.JurosMoraAposAntes.StringFixed(2),
		JurosMoraFinalCorrigido: res.JurosMoraFinalCorrigido.StringFixed(2),
		TotalCorrigido:          res.TotalCorrigido.StringFixed(2),
	}
	for _, e := range res.TraceAntes {
		out.TraceAntes = append(out.TraceAntes, traceLine(e))
	}
	for _, e := range res.TracePos {
		out.TracePos = append(out.TracePos, traceLine(e))
	}
	if withReport {
		out.Relatorio = res.Relatorio(len(res.TraceAntes) > 0 || len(res.TracePos) > 0)
	}
	return out
}

func traceLine(e correcao.TraceEntry) TraceLine {
	return TraceLine{
		Mes:       e.Month.String(),
		Variacao:  e.Fraction.String(),
		Acumulado: e.Cumulative.StringFixed(8),
	}
}

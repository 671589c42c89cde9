/*
Package correcao implements monetary correction of precatório principal and
accrued moratory interest by the IPCA-E price index.

PURPOSE:
  Given a maturity year, the engine resolves two back-to-back windows split
  at December 2021: ANTES (pure index compounding) and PÓS (index
  compounding plus a flat 2% a.a. simple-interest surcharge). It applies
  the resulting factors sequentially to principal and to prior moratory
  interest.

KEY CONCEPTS:
  - MonthKey/Period: monthly calendar arithmetic (monthkey.go)
  - IndexSeries:     month -> fractional variation table (series.go)
  - Accumulate:      exact-decimal compounding with optional trace (fator.go)
  - Engine:          window resolution, overrides, value projection (this file)
  - Relatorio:       the labeled textual contract (relatorio.go)

DESIGN PRINCIPLES:
  1. Purity: Calculate is a pure function of (series, request). No I/O, no
     clock, no config reads, no state across invocations. Batch callers may
     run it concurrently over one shared series without coordination.
  2. Precision: shopspring/decimal everywhere; binary floats never enter
     the arithmetic. Factors are carried at full precision and only
     rendered at 8 decimals; money quantizes to cents with banker's
     rounding at each projection step, matching official memo arithmetic.
  3. All-or-nothing: any failure aborts the invocation with a typed error
     and no report output.

USAGE:
  serie, err := correcao.LoadSeriesFile("indices_ipcae.csv")
  eng := correcao.Engine{Serie: serie}
  res, err := eng.Calculate(correcao.Request{
      Principal: decimal.RequireFromString("1097665.34"),
      AnoVenc:   2008,
  })
  fmt.Print(res.Relatorio(true))
*/
package correcao

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// REQUEST / RESULT
// =============================================================================

// Request carries every input of one calculation. Monetary fields default
// to zero when absent; JurosAAPos defaults to the statutory 2% a.a.
type Request struct {
	Principal    decimal.Decimal
	AnoVenc      int
	AntesMode    AntesMode
	JurosMoraAnt decimal.Decimal

	// PÓS window end. Nil means the last month in the series. When it
	// points past the series, ClipPos clamps instead of failing.
	PosFim  *MonthKey
	ClipPos bool

	// Overrides replace the computed index factors outright, skipping
	// accumulation (and its month-by-month validation) for that window.
	// The simple-interest overlay is never overridden.
	OverrideAntes   *decimal.Decimal
	OverridePosIPCA *decimal.Decimal

	// Annual simple-interest rate on the PÓS window. Zero means 0.02.
	JurosAAPos decimal.Decimal

	// Trace asks for per-month compounding entries in the result.
	Trace bool
}

// Result is the typed outcome of one calculation. The textual report is
// rendered from it (relatorio.go), never the other way around.
type Result struct {
	Windows Windows

	// Factors at full precision; render with StringFixed(8).
	FatorIPCAEAntes      decimal.Decimal
	FatorIPCAEPos        decimal.Decimal
	FatorJuros2aaSimples decimal.Decimal

	MesesAntes   int
	MesesPos     int
	MesesPara2aa int

	// Money, quantized to cents (banker's rounding).
	PrincipalOriginal       decimal.Decimal
	PrincipalAposAntes      decimal.Decimal
	PrincipalPosIPCA        decimal.Decimal
	PrincipalFinalIPCA2aa   decimal.Decimal
	JurosMoraAnterioresBase decimal.Decimal
	JurosMoraAposAntes      decimal.Decimal
	JurosMoraFinalCorrigido decimal.Decimal
	TotalCorrigido          decimal.Decimal

	// Per-month compounding, only when Request.Trace was set. Empty for
	// overridden windows: an override skips accumulation entirely.
	TraceAntes []TraceEntry
	TracePos   []TraceEntry
}

var defaultJurosAAPos = decimal.NewFromFloat(0.02)

// quantize rounds money to cents with round-half-to-even.
func quantize(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes corrections against one loaded index series. The zero
// value is unusable; Serie must be set.
type Engine struct {
	Serie *IndexSeries
}

// Calculate resolves the windows, compounds (or overrides) the index
// factors, applies the simple-interest overlay and projects the monetary
// values. It is safe for concurrent use.
func (e Engine) Calculate(req Request) (*Result, error) {
	if err := validateOverride("override_antes", req.OverrideAntes); err != nil {
		return nil, err
	}
	if err := validateOverride("override_pos_ipca", req.OverridePosIPCA); err != nil {
		return nil, err
	}

	windows, err := ResolveWindows(req.AnoVenc, req.AntesMode, req.PosFim, req.ClipPos, e.Serie)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Windows:    windows,
		MesesAntes: windows.Antes.Count(),
		MesesPos:   windows.Pos.Count(),
	}

	// ANTES factor: override short-circuits accumulation.
	if req.OverrideAntes != nil {
		res.FatorIPCAEAntes = *req.OverrideAntes
	} else {
		res.FatorIPCAEAntes, res.TraceAntes, err = Accumulate(e.Serie, windows.Antes, req.Trace)
		if err != nil {
			return nil, err
		}
	}

	// PÓS index factor.
	if req.OverridePosIPCA != nil {
		res.FatorIPCAEPos = *req.OverridePosIPCA
	} else {
		res.FatorIPCAEPos, res.TracePos, err = Accumulate(e.Serie, windows.Pos, req.Trace)
		if err != nil {
			return nil, err
		}
	}

	// Simple-interest overlay, always derived from the window length even
	// when the index factor was overridden.
	juros := req.JurosAAPos
	if juros.IsZero() {
		juros = defaultJurosAAPos
	}
	res.MesesPara2aa = MesesPara2aa(res.MesesPos)
	res.FatorJuros2aaSimples = SimpleInterestFactor(juros, res.MesesPara2aa)

	// Value projection: each step feeds the next; principal and prior
	// interest share the index factors, and both receive the overlay as
	// the terminal step.
	res.PrincipalOriginal = quantize(req.Principal)
	res.PrincipalAposAntes = quantize(req.Principal.Mul(res.FatorIPCAEAntes))
	res.PrincipalPosIPCA = quantize(res.PrincipalAposAntes.Mul(res.FatorIPCAEPos))
	res.PrincipalFinalIPCA2aa = quantize(res.PrincipalPosIPCA.Mul(res.FatorJuros2aaSimples))

	res.JurosMoraAnterioresBase = quantize(req.JurosMoraAnt)
	res.JurosMoraAposAntes = quantize(req.JurosMoraAnt.Mul(res.FatorIPCAEAntes))
	res.JurosMoraFinalCorrigido = quantize(res.JurosMoraAposAntes.Mul(res.FatorIPCAEPos).Mul(res.FatorJuros2aaSimples))

	res.TotalCorrigido = quantize(res.PrincipalFinalIPCA2aa.Add(res.JurosMoraFinalCorrigido))
	return res, nil
}

func validateOverride(name string, v *decimal.Decimal) error {
	if v != nil && !v.IsPositive() {
		return &InvalidOverrideError{Name: name, Value: v.String()}
	}
	return nil
}

// ParseOverride parses an override flag value. Empty means absent; a
// non-numeric or non-positive value is an InvalidOverrideError. Shared by
// the CLI, the HTTP API and the batch orchestrator so the three entry
// points reject overrides identically.
func ParseOverride(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &InvalidOverrideError{Name: name, Value: raw}
	}
	if !v.IsPositive() {
		return nil, &InvalidOverrideError{Name: name, Value: raw}
	}
	return &v, nil
}

/*
errors.go - Centralized error types for the correction engine

PURPOSE:
  All engine error kinds in one place. Every failure aborts the single
  invocation it occurs in; the engine never retries and never emits a
  partial report. Retry/skip policy belongs to the batch orchestrator.

ERROR CATEGORIES:
  1. Parse errors    - Malformed index series rows or files
  2. Missing index   - A window month absent from the loaded series
  3. Override errors - Non-positive or unparseable override factors
  4. Date range      - ano_venc/antes_mode combinations that cannot resolve

USAGE:
  Callers can branch with errors.Is():

    if errors.Is(err, correcao.ErrMissingIndex) {
        // suggest --clip-pos
    }
*/
package correcao

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrParse is returned when an index series row or file cannot be
	// normalized into the canonical month->fraction mapping.
	ErrParse = errors.New("serie de indices invalida")

	// ErrMissingIndex is returned when a month required by a correction
	// window has no entry in the series and clamping does not apply.
	ErrMissingIndex = errors.New("indice ausente")

	// ErrInvalidOverride is returned when a supplied override factor is
	// non-positive. Overrides exist to reconcile with official memos and a
	// non-positive correction factor is never one.
	ErrInvalidOverride = errors.New("override invalido")

	// ErrDateRange is returned when ano_venc and antes_mode cannot be
	// resolved into windows at all. The legal empty-ANTES case (inverted
	// range in 'full' mode) is NOT this error.
	ErrDateRange = errors.New("intervalo de datas invalido")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingIndexError names the absent month so the operator knows exactly
// which row the series lacks.
type MissingIndexError struct {
	Month MonthKey
	Last  MonthKey // last month available in the series, when known
}

func (e *MissingIndexError) Error() string {
	if e.Last.Valid() {
		return fmt.Sprintf("indice ausente para %s (ultimo disponivel: %s)", e.Month, e.Last)
	}
	return fmt.Sprintf("indice ausente para %s", e.Month)
}

func (e *MissingIndexError) Unwrap() error { return ErrMissingIndex }

// InvalidOverrideError reports which override was rejected and why.
type InvalidOverrideError struct {
	Name  string // "override_antes" or "override_pos_ipca"
	Value string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("%s=%s: fator deve ser um numero positivo", e.Name, e.Value)
}

func (e *InvalidOverrideError) Unwrap() error { return ErrInvalidOverride }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError returns true if the error is due to invalid caller input
// rather than series content.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidOverride) || errors.Is(err, ErrDateRange)
}

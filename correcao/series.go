/*
series.go - IPCA-E index series loading and lookup

PURPOSE:
  Normalizes the two accepted CSV shapes into one immutable month-keyed
  table of fractional monthly variation (0.0065 = 0,65%/month).

ACCEPTED SHAPES:
  A) indice,ano,mes,variacao_mensal   fraction already decimal (0.0065)
  B) data,fator                       data = YYYY-MM; fator either a
                                      multiplicative factor (1.0043), a
                                      plain fraction (0.0043) or a
                                      localized percentage ("0,43%")

  Both shapes normalize to the same fractional-variation semantics:
  factor 1.0043 => fraction 0.0043; "0,43%" => fraction 0.0043.

LOCALIZATION:
  Decimal commas and percent signs are handled here, once, at the series
  boundary. Nothing localized ever reaches the arithmetic core.

SEE ALSO:
  - fator.go: compounds these fractions across a window
  - indices/: produces shape A files from IBGE sources
*/
package correcao

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INDEX SERIES - Immutable month -> fraction table
// =============================================================================

// IndexSeries maps months to their fractional variation. It is built once
// by a loader and never mutated afterwards, which is what lets the batch
// orchestrator share one series across concurrent calculations.
type IndexSeries struct {
	variacoes map[MonthKey]decimal.Decimal
	last      MonthKey
}

// Fraction returns the fractional variation for a month, if present.
func (s *IndexSeries) Fraction(mk MonthKey) (decimal.Decimal, bool) {
	v, ok := s.variacoes[mk]
	return v, ok
}

// LastMonth returns the most recent month present in the series.
func (s *IndexSeries) LastMonth() MonthKey {
	return s.last
}

// Len returns the number of months loaded.
func (s *IndexSeries) Len() int {
	return len(s.variacoes)
}

// =============================================================================
// LOADING
// =============================================================================

// LoadSeriesFile reads an index series CSV from disk.
func LoadSeriesFile(path string) (*IndexSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()
	return LoadSeries(f)
}

// LoadSeries reads an index series CSV in shape A or shape B, detected by
// the header row.
func LoadSeries(r io.Reader) (*IndexSeries, error) {
	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cabecalho ilegivel: %v", ErrParse, err)
	}
	cols := make(map[string]int, len(header))
	for i, c := range header {
		cols[strings.ToLower(strings.TrimSpace(c))] = i
	}

	var loader func(record []string, line int, s *IndexSeries) error
	switch {
	case hasCols(cols, "indice", "ano", "mes", "variacao_mensal"):
		loader = func(record []string, line int, s *IndexSeries) error {
			return loadShapeA(cols, record, line, s)
		}
	case hasCols(cols, "data", "fator"):
		loader = func(record []string, line int, s *IndexSeries) error {
			return loadShapeB(cols, record, line, s)
		}
	default:
		return nil, fmt.Errorf("%w: CSV nao reconhecido; use indice,ano,mes,variacao_mensal ou data,fator", ErrParse)
	}

	s := &IndexSeries{variacoes: make(map[MonthKey]decimal.Decimal)}
	for line := 2; ; line++ {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: linha %d: %v", ErrParse, line, err)
		}
		if err := loader(record, line, s); err != nil {
			return nil, err
		}
	}

	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: nenhum indice carregado", ErrParse)
	}
	return s, nil
}

func hasCols(cols map[string]int, names ...string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}
	return true
}

func loadShapeA(cols map[string]int, record []string, line int, s *IndexSeries) error {
	ano, err := strconv.Atoi(strings.TrimSpace(record[cols["ano"]]))
	if err != nil {
		return fmt.Errorf("%w: linha %d: ano %q", ErrParse, line, record[cols["ano"]])
	}
	mes, err := strconv.Atoi(strings.TrimSpace(record[cols["mes"]]))
	if err != nil {
		return fmt.Errorf("%w: linha %d: mes %q", ErrParse, line, record[cols["mes"]])
	}
	mk := NewMonthKey(ano, mes)
	if !mk.Valid() {
		return fmt.Errorf("%w: linha %d: mes %d fora de 1..12", ErrParse, line, mes)
	}
	raw := strings.ReplaceAll(strings.TrimSpace(record[cols["variacao_mensal"]]), ",", ".")
	fraction, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: linha %d: variacao_mensal %q", ErrParse, line, record[cols["variacao_mensal"]])
	}
	return s.add(mk, fraction, line)
}

func loadShapeB(cols map[string]int, record []string, line int, s *IndexSeries) error {
	mk, err := ParseMonthKey(record[cols["data"]])
	if err != nil {
		return fmt.Errorf("%w: linha %d: data %q", ErrParse, line, record[cols["data"]])
	}
	fraction, err := normalizeFator(record[cols["fator"]])
	if err != nil {
		return fmt.Errorf("%w: linha %d: fator %q", ErrParse, line, record[cols["fator"]])
	}
	return s.add(mk, fraction, line)
}

// normalizeFator converts the shape-B fator column into a fraction.
// "0,43%" => 0.0043; 1.0043 => 0.0043; 0.0043 stays 0.0043. The 0.5 pivot
// between factor and fraction readings comes from the published series:
// no monthly IPCA-E variation ever approaches 50%, and no meaningful
// multiplicative factor falls below it.
func normalizeFator(raw string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if strings.HasSuffix(v, "%") {
		pct, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(v, "%")))
		if err != nil {
			return decimal.Zero, err
		}
		return pct.Div(decimal.NewFromInt(100)), nil
	}
	val, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if val.GreaterThan(decimal.NewFromFloat(0.5)) {
		return val.Sub(decimal.NewFromInt(1)), nil
	}
	return val, nil
}

// add records one month, rejecting conflicting duplicates. Re-stating the
// same value is tolerated since concatenated exports often overlap.
func (s *IndexSeries) add(mk MonthKey, fraction decimal.Decimal, line int) error {
	if existing, ok := s.variacoes[mk]; ok {
		if !existing.Equal(fraction) {
			return fmt.Errorf("%w: linha %d: %s duplicado com valores conflitantes (%s vs %s)",
				ErrParse, line, mk, existing, fraction)
		}
		return nil
	}
	s.variacoes[mk] = fraction
	if !s.last.Valid() || mk.After(s.last) {
		s.last = mk
	}
	return nil
}

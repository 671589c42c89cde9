/*
relatorio.go - The labeled textual report and its tolerant parser

PURPOSE:
  Renders a Result as the deterministic line-oriented report that downstream
  consumers pattern-match, and provides the inverse: a parser that survives
  dot leaders, accents, "R$" and pt-BR number formatting.

STABILITY:
  The field labels below are a parsing contract. Renaming one is a breaking
  change for every consumer of the report. Add new lines if needed; never
  reword existing ones.

PARSER:
  ParseReport exists for consumers that only have the rendered text (the
  original pipeline worked that way) and for round-trip tests. In-process
  callers should use the typed Result directly.
*/
package correcao

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RENDERING
// =============================================================================

// Relatorio renders the labeled report. With trace enabled (and trace data
// present in the result) it includes one line per compounded month for each
// window. A Result only exists for successful calculations, so a failed
// invocation can never produce report lines.
func (r *Result) Relatorio(trace bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ANTES (%s): %s  (%d meses, IPCA-E)\n",
		antesModeLabel(r.Windows.Antes), r.Windows.Antes, r.MesesAntes)
	fmt.Fprintf(&b, "PÓS: %s  (%d meses, IPCA-E + 2%% a.a. simples)\n\n",
		r.Windows.Pos, r.MesesPos)

	if trace {
		for _, e := range r.TraceAntes {
			fmt.Fprintf(&b, "  [ANTES]  %s  variacao=%s  acumulado=%s\n",
				e.Month, e.Fraction.String(), e.Cumulative.StringFixed(8))
		}
		for _, e := range r.TracePos {
			fmt.Fprintf(&b, "  [ PÓS ]  %s  variacao=%s  acumulado=%s\n",
				e.Month, e.Fraction.String(), e.Cumulative.StringFixed(8))
		}
		if len(r.TraceAntes)+len(r.TracePos) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString(">>> CÁLCULO DETALHADO\n")
	fmt.Fprintf(&b, "Fator IPCA-E ANTES ............: %s\n", r.FatorIPCAEAntes.StringFixed(8))
	fmt.Fprintf(&b, "Fator IPCA-E PÓS ..............: %s\n", r.FatorIPCAEPos.StringFixed(8))
	fmt.Fprintf(&b, "Fator 2%% a.a. (simples) .......: %s  (meses para 2%%=%d)\n",
		r.FatorJuros2aaSimples.StringFixed(8), r.MesesPara2aa)
	b.WriteString("---------------------------------------------\n")
	fmt.Fprintf(&b, "Principal original .............: R$ %s\n", FormatBRL(r.PrincipalOriginal))
	fmt.Fprintf(&b, "Principal após ANTES ...........: R$ %s\n", FormatBRL(r.PrincipalAposAntes))
	fmt.Fprintf(&b, "Principal pós (IPCA) ...........: R$ %s\n", FormatBRL(r.PrincipalPosIPCA))
	fmt.Fprintf(&b, "Principal final (IPCA+2%%) ......: R$ %s\n\n", FormatBRL(r.PrincipalFinalIPCA2aa))
	fmt.Fprintf(&b, "Juros mora anteriores (base) ...: R$ %s\n", FormatBRL(r.JurosMoraAnterioresBase))
	fmt.Fprintf(&b, "Juros mora após ANTES ..........: R$ %s\n", FormatBRL(r.JurosMoraAposAntes))
	fmt.Fprintf(&b, "Juros mora final (corrigido) ...: R$ %s\n", FormatBRL(r.JurosMoraFinalCorrigido))
	b.WriteString("---------------------------------------------\n")
	fmt.Fprintf(&b, "TOTAL CORRIGIDO ................: R$ %s\n", FormatBRL(r.TotalCorrigido))

	return b.String()
}

func antesModeLabel(antes Period) string {
	if antes.End.Equal(NewMonthKey(2021, 11)) {
		return string(AntesFull)
	}
	return string(AntesFormacao)
}

// FormatBRL renders cents-quantized money in pt-BR convention:
// 1234567.89 => "1.234.567,89".
func FormatBRL(d decimal.Decimal) string {
	s := d.RoundBank(2).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var grouped strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(ch)
	}

	out := grouped.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// =============================================================================
// PARSING
// =============================================================================

// Resumo holds the fields recovered from a rendered report. Field names
// mirror the destination resumo table columns.
type Resumo struct {
	FatorIPCAEAntes      decimal.Decimal
	FatorIPCAEPos        decimal.Decimal
	FatorJuros2aaSimples decimal.Decimal
	MesesPara2aa         int

	PrincipalOriginal       decimal.Decimal
	PrincipalAposAntes      decimal.Decimal
	PrincipalPosIPCA        decimal.Decimal
	PrincipalFinalIPCA2aa   decimal.Decimal
	JurosMoraAnterioresBase decimal.Decimal
	JurosMoraAposAntes      decimal.Decimal
	JurosMoraFinalCorrigido decimal.Decimal
	TotalCorrigido          decimal.Decimal
}

var (
	numToken   = regexp.MustCompile(`\d[\d.,]*`)
	moneyToken = regexp.MustCompile(`R\$\s*(-?\d[\d.,]*)`)
	mesesToken = regexp.MustCompile(`meses\s*para\s*2%\s*=\s*(\d+)`)
	dotRuns    = regexp.MustCompile(`\.+`)

	// matching is done on accent-stripped lowercase text
	accentStripper = strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e", "í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ç", "c", " ", " ",
	)
)

// ParseReport recovers the Resumo fields from a rendered report. It is
// deliberately tolerant: dot leaders, accents and currency formatting may
// vary across report versions without breaking it. Unmatched fields stay
// zero so downstream NOT-NULL columns always have a value.
func ParseReport(output string) *Resumo {
	res := &Resumo{}
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		norm := accentStripper.Replace(strings.ToLower(line))
		norm = dotRuns.ReplaceAllString(norm, " ")
		norm = strings.Join(strings.Fields(norm), " ")

		switch {
		case strings.Contains(norm, "fator ipca-e antes"):
			res.FatorIPCAEAntes = factorIn(line)
		case strings.Contains(norm, "fator ipca-e pos"):
			res.FatorIPCAEPos = factorIn(line)
		case strings.Contains(norm, "fator 2% a a") || strings.Contains(norm, "fator 2% a.a"):
			res.FatorJuros2aaSimples = factorIn(line)
			if m := mesesToken.FindStringSubmatch(norm); m != nil {
				res.MesesPara2aa, _ = strconv.Atoi(m[1])
			}
		case strings.HasPrefix(norm, "principal original"):
			res.PrincipalOriginal = moneyIn(line)
		case strings.Contains(norm, "principal apos antes"):
			res.PrincipalAposAntes = moneyIn(line)
		case strings.Contains(norm, "principal pos (ipca)") || strings.Contains(norm, "principal pos ipca"):
			res.PrincipalPosIPCA = moneyIn(line)
		case strings.Contains(norm, "principal final"):
			res.PrincipalFinalIPCA2aa = moneyIn(line)
		case strings.Contains(norm, "juros mora anteriores"):
			res.JurosMoraAnterioresBase = moneyIn(line)
		case strings.Contains(norm, "juros mora apos antes"):
			res.JurosMoraAposAntes = moneyIn(line)
		case strings.HasPrefix(norm, "juros mora final"):
			res.JurosMoraFinalCorrigido = moneyIn(line)
		case strings.Contains(norm, "total corrigido"):
			res.TotalCorrigido = moneyIn(line)
		}
	}
	return res
}

// factorIn extracts the first numeric token after the label separator.
// Anchoring past the colon keeps the "2" of "Fator 2% a.a." out of the
// capture. Factors print with a dot decimal; a comma from a localized
// producer is normalized away.
func factorIn(line string) decimal.Decimal {
	if i := strings.LastIndex(line, ":"); i >= 0 {
		line = line[i+1:]
	}
	tok := numToken.FindString(line)
	if tok == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(tok, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// moneyIn extracts the value anchored at "R$" and undoes pt-BR formatting:
// thousands dots dropped, decimal comma to dot.
func moneyIn(line string) decimal.Decimal {
	m := moneyToken.FindStringSubmatch(line)
	if m == nil {
		return decimal.Zero
	}
	us := strings.ReplaceAll(m[1], ".", "")
	us = strings.ReplaceAll(us, ",", ".")
	d, err := decimal.NewFromString(us)
	if err != nil {
		return decimal.Zero
	}
	return d
}

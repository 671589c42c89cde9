/*
seriehist.go - Conversion of the IBGE historical-series spreadsheet

PURPOSE:
  The série histórica ships as a legacy .xls that is actually an HTML
  document with one big <table>: a year column filled only on January
  rows, a Portuguese month column and a monthly percent-variation column.
  This converts that table into shape-A rows.

QUIRKS HANDLED:
  - Year carry-forward down rows (blank year cells inherit the last seen)
  - Month names in Portuguese, abbreviated or full, with stray punctuation
  - Typographic minus signs and NBSPs in numeric cells
  - Percent-vs-fraction ambiguity (see ParsePercentFraction)
*/
package indices

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/revisa/precatorio/correcao"
)

// ptMonths maps Portuguese month names (and abbreviations) to numbers.
var ptMonths = map[string]int{
	"JAN": 1, "FEV": 2, "MAR": 3, "ABR": 4, "MAI": 5, "JUN": 6,
	"JUL": 7, "AGO": 8, "SET": 9, "OUT": 10, "NOV": 11, "DEZ": 12,
	"JANEIRO": 1, "FEVEREIRO": 2, "MARCO": 3, "MARÇO": 3, "ABRIL": 4,
	"MAIO": 5, "JUNHO": 6, "JULHO": 7, "AGOSTO": 8, "SETEMBRO": 9,
	"OUTUBRO": 10, "NOVEMBRO": 11, "DEZEMBRO": 12,
}

// ConvertOptions locates the relevant columns inside the table. The
// defaults match the published IPCA-E sheet: ANO, MÊS, NÚMERO ÍNDICE,
// VARIAÇÃO % MÊS, ...
type ConvertOptions struct {
	Indice   string // index name written into shape-A rows, e.g. "IPCA-E"
	YearCol  int
	MonthCol int
	VarCol   int
}

// DefaultConvertOptions returns the column layout of the published sheet.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{Indice: "IPCA-E", YearCol: 0, MonthCol: 1, VarCol: 3}
}

// ConvertHTML reads the HTML-disguised spreadsheet and returns shape-A
// rows. Rows without a recognizable month (headers, separators, footers)
// are skipped; a recognizable month with an unparseable variation is an
// error, because silently dropping a month would later surface as a
// confusing MissingIndexError during calculation.
func ConvertHTML(r io.Reader, opts ConvertOptions) ([]Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("planilha HTML ilegivel: %w", err)
	}

	var rows []Row
	currentYear := 0
	maxCol := opts.YearCol
	for _, c := range []int{opts.MonthCol, opts.VarCol} {
		if c > maxCol {
			maxCol = c
		}
	}

	for _, cells := range tableRows(doc) {
		if len(cells) <= maxCol {
			continue
		}
		if y, ok := parseYear(cells[opts.YearCol]); ok {
			currentYear = y
		}
		month, ok := parseMonth(cells[opts.MonthCol])
		if !ok || currentYear == 0 {
			continue
		}

		variacao, err := ParsePercentFraction(cells[opts.VarCol])
		if err != nil {
			return nil, fmt.Errorf("variacao ilegivel em %04d/%02d: %w", currentYear, month, err)
		}
		rows = append(rows, Row{
			Indice:   opts.Indice,
			Month:    correcao.NewMonthKey(currentYear, month),
			Variacao: variacao,
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("nenhuma linha de serie encontrada na planilha")
	}
	return rows, nil
}

// tableRows walks the document and returns the text of every cell of
// every <tr>, in document order.
func tableRows(doc *html.Node) [][]string {
	var rows [][]string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, nodeText(c))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalizeCell(b.String())
}

// normalizeCell strips NBSPs, newlines and duplicate spaces.
func normalizeCell(s string) string {
	s = strings.NewReplacer(" ", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseYear(cell string) (int, bool) {
	s := strings.TrimSuffix(strings.TrimSpace(cell), ".0") // 1940.0 in some exports
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 2200 {
		return 0, false
	}
	return y, true
}

func parseMonth(cell string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(cell))
	s = strings.NewReplacer(".", "", ",", "", ";", "", ":", "").Replace(s)
	if m, ok := ptMonths[s]; ok {
		return m, true
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n, true
	}
	return 0, false
}

// ParsePercentFraction converts a spreadsheet variation cell into a
// monthly fraction. "0,21", "0.21%", "−0,22" all become ±0.0021/0.0022.
// An explicit percent sign always divides by 100. Without one, values
// with |v| <= 0.2 are taken as already-fractional: the sheet has carried
// both representations over the years, and no monthly percent variation
// that small ever needs disambiguation against a 20%+ month.
func ParsePercentFraction(cell string) (decimal.Decimal, error) {
	s := normalizeCell(cell)
	s = strings.NewReplacer("–", "-", "−", "-", " ", "").Replace(s)
	hadPercent := strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")
	// a comma marks pt-BR formatting: dots are thousands separators there
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("celula vazia")
	}

	val, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if hadPercent || val.Abs().GreaterThan(decimal.NewFromFloat(0.2)) {
		return val.Div(decimal.NewFromInt(100)), nil
	}
	return val, nil
}

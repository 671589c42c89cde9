/*
Package indices acquires the IPCA-E monthly series from IBGE sources and
emits it as the shape-A CSV the correction engine loads.

PURPOSE:
  Two acquisition paths, both producing identical rows:
  - The historical-series spreadsheet published as a ZIP on the IBGE FTP
    mirror (download.go + seriehist.go). The legacy .xls inside is in fact
    an HTML table, parsed as such.
  - The SIDRA values API, table 1453 (sidra.go).

  The engine never fetches anything itself; this package materializes the
  series file that batch runs and single calculations point at.

SEE ALSO:
  - correcao/series.go: the consumer of the emitted CSV
*/
package indices

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/revisa/precatorio/correcao"
)

// Row is one month of the acquired series, in shape-A terms: the variation
// is a monthly fraction (0.0043 = 0,43%).
type Row struct {
	Indice   string
	Month    correcao.MonthKey
	Variacao decimal.Decimal
}

// WriteCSV emits rows as a shape-A CSV (indice,ano,mes,variacao_mensal),
// sorted by month so output files diff cleanly between acquisitions.
func WriteCSV(w io.Writer, rows []Row) error {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month.Before(sorted[j].Month) })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"indice", "ano", "mes", "variacao_mensal"}); err != nil {
		return err
	}
	for _, r := range sorted {
		record := []string{
			r.Indice,
			fmt.Sprintf("%d", r.Month.Year),
			fmt.Sprintf("%d", int(r.Month.Month)),
			r.Variacao.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

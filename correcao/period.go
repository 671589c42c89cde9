package correcao

import (
	"fmt"
	"time"
)

// =============================================================================
// WINDOW RESOLUTION - ANTES and PÓS correction windows
// =============================================================================

// AntesMode selects how the pre-cutoff window ends.
type AntesMode string

const (
	// AntesFormacao runs the ANTES window through December of the maturity
	// year: 07/(ano_venc-1) .. 12/(ano_venc), roughly 18 months.
	AntesFormacao AntesMode = "formacao"

	// AntesFull runs the ANTES window all the way to the regime cutoff:
	// 07/(ano_venc-1) .. 11/2021.
	AntesFull AntesMode = "full"
)

// The post-cutoff regime starts at the December 2021 cutoff; everything
// before it is corrected by pure index compounding.
var posStart = NewMonthKey(2021, 12)

// plausible bounds for ano_venc; outside them the request is garbage
// (a two-digit year, a misparsed date) rather than an empty window.
const (
	minAnoVenc = 1988 // promulgation of the current constitution
	maxAnoVenc = 2100
)

// Windows holds the two resolved correction windows. ANTES is strictly
// before PÓS in calendar time by construction; they are not required to be
// adjacent.
type Windows struct {
	Antes Period
	Pos   Period
}

// ResolveWindows computes the ANTES and PÓS windows for a request against
// a loaded series.
//
// The PÓS end is posFim when supplied, otherwise the last month in the
// series. A posFim beyond the series either clamps (clipPos) or fails with
// MissingIndexError.
//
// An inverted ANTES range (e.g. ano_venc <= 2021 in 'full' mode) is legal
// and resolves to an empty window: such precatórios accrue entirely inside
// the PÓS regime.
func ResolveWindows(anoVenc int, mode AntesMode, posFim *MonthKey, clipPos bool, serie *IndexSeries) (Windows, error) {
	if anoVenc < minAnoVenc || anoVenc > maxAnoVenc {
		return Windows{}, fmt.Errorf("%w: ano_venc=%d", ErrDateRange, anoVenc)
	}

	antes := Period{Start: NewMonthKey(anoVenc-1, int(time.July))}
	switch mode {
	case AntesFormacao, "":
		antes.End = NewMonthKey(anoVenc, int(time.December))
	case AntesFull:
		antes.End = NewMonthKey(2021, int(time.November))
	default:
		return Windows{}, fmt.Errorf("%w: antes_mode=%q", ErrDateRange, mode)
	}

	last := serie.LastMonth()
	pos := Period{Start: posStart, End: last}
	if posFim != nil {
		if posFim.After(last) {
			if !clipPos {
				return Windows{}, &MissingIndexError{Month: *posFim, Last: last}
			}
			// clamp to what the series actually has
		} else {
			pos.End = *posFim
		}
	}

	return Windows{Antes: antes, Pos: pos}, nil
}

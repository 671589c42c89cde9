package correcao

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// FACTOR ACCUMULATOR - Compounds monthly variations across a window
// =============================================================================

// TraceEntry records one month of compounding: the month, its fractional
// variation and the cumulative factor after applying it.
type TraceEntry struct {
	Month      MonthKey
	Fraction   decimal.Decimal
	Cumulative decimal.Decimal
}

var one = decimal.NewFromInt(1)

// Accumulate compounds the series across the period: prod(1 + fraction_m)
// for every month from Start to End inclusive, in calendar order.
//
// Every month inside the window must be present; there is no implicit
// skip. A missing month fails with MissingIndexError naming it. An empty
// period yields factor 1 and a nil trace.
//
// When withTrace is set the returned slice carries one entry per month in
// order; otherwise it is nil and no allocations are made for it.
func Accumulate(serie *IndexSeries, p Period, withTrace bool) (decimal.Decimal, []TraceEntry, error) {
	factor := one
	var trace []TraceEntry
	if withTrace && !p.IsEmpty() {
		trace = make([]TraceEntry, 0, p.Count())
	}

	for cur := p.Start; !p.IsEmpty() && !cur.After(p.End); cur = cur.Next() {
		fraction, ok := serie.Fraction(cur)
		if !ok {
			return decimal.Zero, nil, &MissingIndexError{Month: cur, Last: serie.LastMonth()}
		}
		factor = factor.Mul(one.Add(fraction))
		if withTrace {
			trace = append(trace, TraceEntry{Month: cur, Fraction: fraction, Cumulative: factor})
		}
	}
	return factor, trace, nil
}

// =============================================================================
// SIMPLE-INTEREST OVERLAY - Flat 2% a.a. surcharge on the PÓS window
// =============================================================================

// MesesPara2aa returns the month count eligible for the simple-interest
// surcharge: one less than the PÓS window, floored at zero. The index for
// the window's first month is already inside the compounded PÓS factor;
// the surcharge only starts accruing after that month closes.
func MesesPara2aa(nMesesPos int) int {
	if nMesesPos <= 1 {
		return 0
	}
	return nMesesPos - 1
}

// SimpleInterestFactor computes 1 + (annualRate/12) * months, the flat
// non-compounding multiplier applied on top of the PÓS index factor.
func SimpleInterestFactor(annualRate decimal.Decimal, months int) decimal.Decimal {
	twelve := decimal.NewFromInt(12)
	return one.Add(annualRate.Mul(decimal.NewFromInt(int64(months))).Div(twelve))
}

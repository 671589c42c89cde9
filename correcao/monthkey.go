package correcao

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// MONTH KEY - Monthly granularity time point (the index series is monthly)
// =============================================================================

// MonthKey identifies one calendar month. It is the key of the index series
// and the boundary type for correction windows.
type MonthKey struct {
	Year  int
	Month time.Month
}

// NewMonthKey builds a MonthKey from a year and a 1-12 month number.
func NewMonthKey(year, month int) MonthKey {
	return MonthKey{Year: year, Month: time.Month(month)}
}

// ParseMonthKey parses the "YYYY-MM" form used by the fator CSV and by the
// --pos-fim flag.
func ParseMonthKey(s string) (MonthKey, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return MonthKey{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrParse, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return MonthKey{}, fmt.Errorf("%w: year in %q: %v", ErrParse, s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return MonthKey{}, fmt.Errorf("%w: month in %q: %v", ErrParse, s, err)
	}
	mk := NewMonthKey(year, month)
	if !mk.Valid() {
		return MonthKey{}, fmt.Errorf("%w: %q is out of range", ErrParse, s)
	}
	return mk, nil
}

// Valid reports whether the month number is in [1, 12].
func (mk MonthKey) Valid() bool {
	return mk.Month >= time.January && mk.Month <= time.December
}

// ordinal gives a total order across years: year*12 + month.
func (mk MonthKey) ordinal() int {
	return mk.Year*12 + int(mk.Month) - 1
}

// Comparison
func (mk MonthKey) Before(other MonthKey) bool { return mk.ordinal() < other.ordinal() }
func (mk MonthKey) After(other MonthKey) bool  { return mk.ordinal() > other.ordinal() }
func (mk MonthKey) Equal(other MonthKey) bool  { return mk.ordinal() == other.ordinal() }

// Next returns the following calendar month.
func (mk MonthKey) Next() MonthKey {
	if mk.Month == time.December {
		return MonthKey{Year: mk.Year + 1, Month: time.January}
	}
	return MonthKey{Year: mk.Year, Month: mk.Month + 1}
}

// MonthsUntil returns the number of whole months from mk to other.
// Negative when other precedes mk.
func (mk MonthKey) MonthsUntil(other MonthKey) int {
	return other.ordinal() - mk.ordinal()
}

// String renders the canonical "YYYY-MM" form.
func (mk MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", mk.Year, int(mk.Month))
}

// =============================================================================
// PERIOD - Closed inclusive month range
// =============================================================================

// Period is a closed inclusive range of months [Start, End]. A period whose
// end precedes its start is empty: zero months, compounded factor 1. The
// resolver produces such periods deliberately for precatórios issued
// entirely inside the post-cutoff regime.
type Period struct {
	Start MonthKey
	End   MonthKey
}

// IsEmpty reports whether the period covers no months.
func (p Period) IsEmpty() bool {
	return p.End.Before(p.Start)
}

// Count returns the number of months in the period.
func (p Period) Count() int {
	if p.IsEmpty() {
		return 0
	}
	return p.Start.MonthsUntil(p.End) + 1
}

// Months returns every month in the period in calendar order.
func (p Period) Months() []MonthKey {
	if p.IsEmpty() {
		return nil
	}
	months := make([]MonthKey, 0, p.Count())
	for cur := p.Start; !cur.After(p.End); cur = cur.Next() {
		months = append(months, cur)
	}
	return months
}

// Contains returns true if the month is within [Start, End].
func (p Period) Contains(mk MonthKey) bool {
	return !mk.Before(p.Start) && !mk.After(p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	if p.IsEmpty() {
		return "[vazio]"
	}
	return p.Start.String() + " .. " + p.End.String()
}

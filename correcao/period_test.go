package correcao_test

import (
	"testing"

	"github.com/revisa/precatorio/correcao"
)

func TestParseMonthKey(t *testing.T) {
	mk, err := correcao.ParseMonthKey("2025-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mk.Year != 2025 || int(mk.Month) != 10 {
		t.Errorf("parsed %s, want 2025-10", mk)
	}

	for _, bad := range []string{"2025", "2025-13", "2025-00", "abc-01", "2025-xy"} {
		if _, err := correcao.ParseMonthKey(bad); err == nil {
			t.Errorf("ParseMonthKey(%q) succeeded, want error", bad)
		}
	}
}

func TestMonthKey_Ordering(t *testing.T) {
	dec21 := mk(2021, 12)
	jan22 := mk(2022, 1)

	if !dec21.Before(jan22) || !jan22.After(dec21) {
		t.Error("year boundary ordering broken")
	}
	if !dec21.Next().Equal(jan22) {
		t.Errorf("Next(2021-12) = %s, want 2022-01", dec21.Next())
	}
	if got := mk(2019, 7).MonthsUntil(mk(2020, 12)); got != 17 {
		t.Errorf("MonthsUntil = %d, want 17", got)
	}
}

func TestPeriod_Months(t *testing.T) {
	p := correcao.Period{Start: mk(2021, 11), End: mk(2022, 2)}
	months := p.Months()
	if len(months) != 4 || p.Count() != 4 {
		t.Fatalf("got %d months, want 4", len(months))
	}
	if !months[0].Equal(mk(2021, 11)) || !months[3].Equal(mk(2022, 2)) {
		t.Errorf("months = %v", months)
	}

	empty := correcao.Period{Start: mk(2022, 7), End: mk(2021, 11)}
	if !empty.IsEmpty() || empty.Count() != 0 || empty.Months() != nil {
		t.Error("inverted period should be empty")
	}
}

func TestResolveWindows(t *testing.T) {
	serie := uniformSeries(t, mk(2019, 7), mk(2024, 6), "0.004")

	// formacao: 07/(Y-1) .. 12/Y
	w, err := correcao.ResolveWindows(2020, correcao.AntesFormacao, nil, false, serie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Antes.Start.Equal(mk(2019, 7)) || !w.Antes.End.Equal(mk(2020, 12)) {
		t.Errorf("ANTES = %s, want 2019-07 .. 2020-12", w.Antes)
	}
	if !w.Pos.Start.Equal(mk(2021, 12)) || !w.Pos.End.Equal(mk(2024, 6)) {
		t.Errorf("PÓS = %s, want 2021-12 .. 2024-06 (series end)", w.Pos)
	}

	// full: 07/(Y-1) .. 11/2021
	w, err = correcao.ResolveWindows(2008, correcao.AntesFull, nil, false, serie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Antes.Start.Equal(mk(2007, 7)) || !w.Antes.End.Equal(mk(2021, 11)) {
		t.Errorf("ANTES = %s, want 2007-07 .. 2021-11", w.Antes)
	}

	// explicit pos_fim inside the series
	fim := mk(2023, 3)
	w, err = correcao.ResolveWindows(2020, correcao.AntesFormacao, &fim, false, serie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Pos.End.Equal(fim) {
		t.Errorf("PÓS end = %s, want 2023-03", w.Pos.End)
	}
}

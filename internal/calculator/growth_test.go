package calculator

import (
	"errors"
	"testing"
	"time"

	"DriftSentinel/internal/model"
)

func driftSeries(pcts ...float64) model.DriftSeries {
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := make(model.DriftSeries, len(pcts))
	for i, p := range pcts {
		series[i] = model.DriftRecord{Date: base.AddDate(0, 0, i), PctChg: p}
	}
	return series
}

func TestCompound(t *testing.T) {
	growth, err := Compound(driftSeries(10, -10))
	if err != nil {
		t.Fatalf("Compound: %v", err)
	}
	if len(growth) != 2 {
		t.Fatalf("growth len = %d, want 2", len(growth))
	}
	// +10% then -10% does not round-trip: 100 * 1.1 * 0.9 = 99.
	if !approx(growth[0].Index, 110) {
		t.Errorf("growth[0] = %v, want 110", growth[0].Index)
	}
	if !approx(growth[1].Index, 99) {
		t.Errorf("growth[1] = %v, want 99", growth[1].Index)
	}
	if !approx(growth.Final(), 99) {
		t.Errorf("Final = %v, want 99", growth.Final())
	}
}

func TestCompoundOrderIndependentFinal(t *testing.T) {
	a, err := Compound(driftSeries(10, 0, -50))
	if err != nil {
		t.Fatalf("Compound a: %v", err)
	}
	b, err := Compound(driftSeries(-50, 0, 10))
	if err != nil {
		t.Fatalf("Compound b: %v", err)
	}

	// Trajectories differ but the product of factors commutes.
	wantA := []float64{110, 110, 55}
	wantB := []float64{50, 50, 55}
	for i := range wantA {
		if !approx(a[i].Index, wantA[i]) {
			t.Errorf("a[%d] = %v, want %v", i, a[i].Index, wantA[i])
		}
		if !approx(b[i].Index, wantB[i]) {
			t.Errorf("b[%d] = %v, want %v", i, b[i].Index, wantB[i])
		}
	}
	if !approx(a.Final(), b.Final()) {
		t.Errorf("finals differ: %v vs %v", a.Final(), b.Final())
	}
}

func TestCompoundEmpty(t *testing.T) {
	_, err := Compound(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("want ErrEmptySeries, got %v", err)
	}
	_, err = CompoundBars(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("CompoundBars: want ErrEmptySeries, got %v", err)
	}
}

func TestCompoundRejectsOutOfOrder(t *testing.T) {
	series := driftSeries(1, 2)
	series[0], series[1] = series[1], series[0]
	if _, err := Compound(series); err == nil {
		t.Errorf("expected error for out-of-order series")
	}

	dup := driftSeries(1, 2)
	dup[1].Date = dup[0].Date
	if _, err := Compound(dup); err == nil {
		t.Errorf("expected error for duplicate dates")
	}
}

func TestCompoundBars(t *testing.T) {
	base := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	drifts := []model.BarDrift{
		{Timestamp: base, PctChg: 1},
		{Timestamp: base.Add(30 * time.Minute), PctChg: -1},
	}
	growth, err := CompoundBars(drifts)
	if err != nil {
		t.Fatalf("CompoundBars: %v", err)
	}
	if !approx(growth.Final(), 100*1.01*0.99) {
		t.Errorf("Final = %v, want %v", growth.Final(), 100*1.01*0.99)
	}
}

func TestSummarize(t *testing.T) {
	series := model.DriftSeries{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Delta: 2, PctChg: 2},
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Delta: -1, PctChg: -1},
		{Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Delta: 3, PctChg: 3},
	}
	sum, err := Summarize(series)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Periods != 3 {
		t.Errorf("Periods = %d, want 3", sum.Periods)
	}
	if !approx(sum.TotalDelta, 4) {
		t.Errorf("TotalDelta = %v, want 4", sum.TotalDelta)
	}
	if !approx(sum.MeanPct, 4.0/3) {
		t.Errorf("MeanPct = %v, want %v", sum.MeanPct, 4.0/3)
	}
	if sum.StdDevPct <= 0 {
		t.Errorf("StdDevPct = %v, want > 0", sum.StdDevPct)
	}

	// A single record has no spread.
	sum, err = Summarize(series[:1])
	if err != nil {
		t.Fatalf("Summarize single: %v", err)
	}
	if sum.StdDevPct != 0 {
		t.Errorf("single-record StdDevPct = %v, want 0", sum.StdDevPct)
	}

	if _, err := Summarize(nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("want ErrEmptySeries, got %v", err)
	}
}

func TestGrowthSeriesFinalEmpty(t *testing.T) {
	var g model.GrowthSeries
	if !approx(g.Final(), 100) {
		t.Errorf("empty Final = %v, want base 100", g.Final())
	}
}

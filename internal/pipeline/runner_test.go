package pipeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"DriftSentinel/internal/calculator"
	"DriftSentinel/internal/marketdata"
	"DriftSentinel/internal/model"
)

func etBar(t *testing.T, y int, mo time.Month, d, h, m int, open, close float64) model.Bar {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return model.Bar{
		Timestamp: time.Date(y, mo, d, h, m, 0, 0, ny).UTC(),
		Open:      open, Close: close, Volume: 100,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// marchBars builds three trading days (Mar 4-6 2024) plus one Saturday bar
// that the calendar filter must drop.
func marchBars(t *testing.T) []model.Bar {
	t.Helper()
	days := []struct {
		day         int
		open, close float64
	}{
		{4, 100, 102},
		{5, 102, 101},
		{6, 101, 104},
	}
	var bars []model.Bar
	for _, d := range days {
		bars = append(bars,
			etBar(t, 2024, 3, d.day, 9, 30, d.open, d.open+1),
			etBar(t, 2024, 3, d.day, 15, 30, d.open+1, d.close),
			etBar(t, 2024, 3, d.day, 20, 0, d.close, d.close+0.5),
		)
	}
	// Saturday bar; a well-behaved source never returns it, but the
	// calendar filter must drop it regardless.
	bars = append(bars, etBar(t, 2024, 3, 9, 9, 30, 999, 999))
	return bars
}

func marchCalendar() map[int][]string {
	return map[int][]string{
		2024: {"2024-03-04", "2024-03-05", "2024-03-06"},
	}
}

func TestRunDailyMode(t *testing.T) {
	src := &marketdata.MockSource{Bars: marchBars(t), TradingDays: marchCalendar()}
	r, err := NewRunner(src, "SPY", marketdata.Timeframe30Min, ModeDaily, calculator.CloseLastBar)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	res, err := r.Run(2024, 2024)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.YearsProcessed != 1 || res.YearsSkipped != 0 {
		t.Errorf("years processed=%d skipped=%d, want 1/0", res.YearsProcessed, res.YearsSkipped)
	}

	if len(res.Intraday) != 3 {
		t.Fatalf("intraday records = %d, want 3 (Saturday bar must not create a day)", len(res.Intraday))
	}
	wantDeltas := []float64{2, -1, 3}
	for i, want := range wantDeltas {
		if !approx(res.Intraday[i].Delta, want) {
			t.Errorf("intraday[%d].Delta = %v, want %v", i, res.Intraday[i].Delta, want)
		}
	}
	if len(res.Overnight) != 2 {
		t.Fatalf("overnight records = %d, want 2", len(res.Overnight))
	}

	if len(res.IntradayGrowth) != 3 {
		t.Errorf("intraday growth points = %d, want 3", len(res.IntradayGrowth))
	}
	if res.IntradaySummary.Periods != 3 {
		t.Errorf("intraday summary periods = %d, want 3", res.IntradaySummary.Periods)
	}
	if !approx(res.IntradaySummary.TotalDelta, 4) {
		t.Errorf("intraday TotalDelta = %v, want 4", res.IntradaySummary.TotalDelta)
	}
}

func TestRunBarsMode(t *testing.T) {
	src := &marketdata.MockSource{Bars: marchBars(t), TradingDays: marchCalendar()}
	r, err := NewRunner(src, "SPY", marketdata.Timeframe30Min, ModeBars, calculator.CloseLastBar)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	res, err := r.Run(2024, 2024)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Per day: 09:30 and 15:30 intraday, 20:00 overnight. Saturday dropped.
	if len(res.IntradayBars) != 6 {
		t.Errorf("intraday bars = %d, want 6", len(res.IntradayBars))
	}
	if len(res.OvernightBars) != 3 {
		t.Errorf("overnight bars = %d, want 3", len(res.OvernightBars))
	}
	if len(res.IntradayGrowth) != 6 {
		t.Errorf("intraday growth points = %d, want 6", len(res.IntradayGrowth))
	}
}

// flakySource fails bar fetches for one configured year.
type flakySource struct {
	inner    marketdata.BarSource
	failYear int
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) FetchBars(ticker string, tf marketdata.Timeframe, start, end time.Time) ([]model.Bar, error) {
	if start.Year() == f.failYear || end.Year() == f.failYear {
		return nil, errors.New("upstream unavailable")
	}
	return f.inner.FetchBars(ticker, tf, start, end)
}

func (f *flakySource) FetchTradingDays(year int) ([]string, error) {
	return f.inner.FetchTradingDays(year)
}

func TestRunSkipsFailedYear(t *testing.T) {
	bars := marchBars(t)
	bars = append(bars,
		etBar(t, 2025, 3, 3, 9, 30, 104, 105),
		etBar(t, 2025, 3, 3, 15, 30, 105, 106),
	)
	cal := marchCalendar()
	cal[2025] = []string{"2025-03-03"}

	src := &flakySource{
		inner:    &marketdata.MockSource{Bars: bars, TradingDays: cal},
		failYear: 2024,
	}
	r, err := NewRunner(src, "SPY", marketdata.Timeframe30Min, ModeDaily, calculator.CloseLastBar)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	res, err := r.Run(2024, 2025)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.YearsProcessed != 1 || res.YearsSkipped != 1 {
		t.Errorf("years processed=%d skipped=%d, want 1/1", res.YearsProcessed, res.YearsSkipped)
	}
	if len(res.Intraday) != 1 {
		t.Errorf("intraday records = %d, want 1 (only 2025 survives)", len(res.Intraday))
	}
}

func TestRunAllYearsFailed(t *testing.T) {
	src := &marketdata.MockSource{BarsErr: errors.New("upstream unavailable")}
	r, err := NewRunner(src, "SPY", marketdata.Timeframe30Min, ModeDaily, calculator.CloseLastBar)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	_, err = r.Run(2024, 2024)
	if !errors.Is(err, calculator.ErrEmptySeries) {
		t.Errorf("want ErrEmptySeries when nothing was processed, got %v", err)
	}
}

func TestRunRejectsInvertedRange(t *testing.T) {
	src := &marketdata.MockSource{}
	r, err := NewRunner(src, "SPY", marketdata.Timeframe30Min, ModeDaily, calculator.CloseLastBar)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := r.Run(2024, 2020); err == nil {
		t.Errorf("expected error for end year before start year")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("daily"); err != nil || m != ModeDaily {
		t.Errorf("daily: %v, %v", m, err)
	}
	if m, err := ParseMode("bars"); err != nil || m != ModeBars {
		t.Errorf("bars: %v, %v", m, err)
	}
	if _, err := ParseMode("weekly"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}

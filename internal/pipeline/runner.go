package pipeline

import (
	"fmt"
	"log"
	"time"

	"DriftSentinel/internal/calculator"
	"DriftSentinel/internal/marketdata"
	"DriftSentinel/internal/model"
)

// Mode selects what the Runner computes from the fetched bars.
type Mode int

const (
	// ModeDaily produces one drift record per session per trading day.
	ModeDaily Mode = iota
	// ModeBars produces continuous per-bar drift for both sessions.
	ModeBars
)

// ParseMode maps a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "daily":
		return ModeDaily, nil
	case "bars":
		return ModeBars, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want daily or bars)", s)
	}
}

// Result carries the output of a multi-year drift analysis: the aligned
// intraday and overnight series, their cumulative growth indices, and the
// summary scalars.
type Result struct {
	Ticker string

	Intraday  model.DriftSeries
	Overnight model.DriftSeries

	IntradayBars  []model.BarDrift
	OvernightBars []model.BarDrift

	IntradayGrowth  model.GrowthSeries
	OvernightGrowth model.GrowthSeries

	IntradaySummary  model.DriftSummary
	OvernightSummary model.DriftSummary

	YearsProcessed int
	YearsSkipped   int
}

// Runner orchestrates the fetch + classify + compute + aggregate flow,
// year by year to respect API pagination limits. It is synchronous and
// single-threaded; the accumulator series are owned exclusively by the
// Runner for the duration of a run.
type Runner struct {
	Source     marketdata.BarSource
	Classifier *calculator.SessionClassifier
	Calc       *calculator.DriftCalculator
	Ticker     string
	Timeframe  marketdata.Timeframe
	Mode       Mode

	calendars map[int]map[string]bool
}

// NewRunner wires a Runner with its classifier and calculator.
func NewRunner(src marketdata.BarSource, ticker string, tf marketdata.Timeframe, mode Mode, conv calculator.CloseConvention) (*Runner, error) {
	classifier, err := calculator.NewSessionClassifier()
	if err != nil {
		return nil, err
	}
	return &Runner{
		Source:     src,
		Classifier: classifier,
		Calc:       calculator.NewDriftCalculator(classifier, conv),
		Ticker:     ticker,
		Timeframe:  tf,
		Mode:       mode,
		calendars:  make(map[int]map[string]bool),
	}, nil
}

// yearRange resolves the instants covering one calendar year. The bounds
// are expressed as Eastern wall-clock datetimes with an explicit offset and
// parsed with the standard RFC3339 parser.
func yearRange(year int) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, fmt.Sprintf("%d-01-01T00:00:00-04:00", year))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse year start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, fmt.Sprintf("%d-12-31T23:59:59-04:00", year))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse year end: %w", err)
	}
	return start, end, nil
}

// Run processes every year in [startYear, endYear]. A failed year is
// logged and skipped; the run continues. Cumulative growth is compounded
// over the full concatenated series, never reset per year.
func (r *Runner) Run(startYear, endYear int) (*Result, error) {
	if endYear < startYear {
		return nil, fmt.Errorf("end year %d before start year %d", endYear, startYear)
	}

	res := &Result{Ticker: r.Ticker}
	for year := startYear; year <= endYear; year++ {
		if err := r.runYear(year, res); err != nil {
			log.Printf("[WARN] year %d skipped: %v", year, err)
			res.YearsSkipped++
			continue
		}
		res.YearsProcessed++
		log.Printf("[INFO] processed %d", year)
	}

	var err error
	switch r.Mode {
	case ModeBars:
		if res.IntradayGrowth, err = calculator.CompoundBars(res.IntradayBars); err != nil {
			return nil, fmt.Errorf("intraday aggregation: %w", err)
		}
		if res.OvernightGrowth, err = calculator.CompoundBars(res.OvernightBars); err != nil {
			return nil, fmt.Errorf("overnight aggregation: %w", err)
		}
		if res.IntradaySummary, err = calculator.SummarizeBars(res.IntradayBars); err != nil {
			return nil, fmt.Errorf("intraday summary: %w", err)
		}
		if res.OvernightSummary, err = calculator.SummarizeBars(res.OvernightBars); err != nil {
			return nil, fmt.Errorf("overnight summary: %w", err)
		}
	default:
		if res.IntradayGrowth, err = calculator.Compound(res.Intraday); err != nil {
			return nil, fmt.Errorf("intraday aggregation: %w", err)
		}
		if res.OvernightGrowth, err = calculator.Compound(res.Overnight); err != nil {
			return nil, fmt.Errorf("overnight aggregation: %w", err)
		}
		if res.IntradaySummary, err = calculator.Summarize(res.Intraday); err != nil {
			return nil, fmt.Errorf("intraday summary: %w", err)
		}
		if res.OvernightSummary, err = calculator.Summarize(res.Overnight); err != nil {
			return nil, fmt.Errorf("overnight summary: %w", err)
		}
	}
	return res, nil
}

func (r *Runner) runYear(year int, res *Result) error {
	start, end, err := yearRange(year)
	if err != nil {
		return err
	}

	bars, err := r.Source.FetchBars(r.Ticker, r.Timeframe, start, end)
	if err != nil {
		return err
	}

	days, err := r.tradingDays(bars)
	if err != nil {
		return err
	}

	// Drop bars on weekends and holidays even if the source returned them.
	filtered := bars[:0:0]
	for _, b := range bars {
		if days[r.Classifier.DateKey(b.Timestamp)] {
			filtered = append(filtered, b)
		}
	}

	switch r.Mode {
	case ModeBars:
		intraday, overnight := r.Classifier.Split(filtered)
		res.IntradayBars = append(res.IntradayBars, r.Calc.IntradayBarDrift(intraday)...)
		res.OvernightBars = append(res.OvernightBars, r.Calc.OvernightBarDrift(overnight)...)
	default:
		intraday, overnight := r.Calc.DailySessionDrift(filtered)
		res.Intraday = append(res.Intraday, intraday...)
		res.Overnight = append(res.Overnight, overnight...)
	}
	return nil
}

// tradingDays builds the calendar set for the years actually spanned by
// the fetched bars (Eastern dates), memoizing per-year calendars so
// adjacent ranges reuse them.
func (r *Runner) tradingDays(bars []model.Bar) (map[string]bool, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("trading days: %w", marketdata.ErrNoData)
	}

	minYear := r.Classifier.Eastern(bars[0].Timestamp).Year()
	maxYear := minYear
	for _, b := range bars {
		y := r.Classifier.Eastern(b.Timestamp).Year()
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}

	set := make(map[string]bool)
	for y := minYear; y <= maxYear; y++ {
		cached, ok := r.calendars[y]
		if !ok {
			days, err := r.Source.FetchTradingDays(y)
			if err != nil {
				return nil, err
			}
			cached = make(map[string]bool, len(days))
			for _, d := range days {
				cached[d] = true
			}
			r.calendars[y] = cached
		}
		for d := range cached {
			set[d] = true
		}
	}
	return set, nil
}

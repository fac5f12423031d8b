package marketdata

import (
	"fmt"
	"time"

	"DriftSentinel/internal/model"
)

// BarSource supplies historical price bars and the trading calendar.
type BarSource interface {
	// FetchBars returns all bars for ticker in [start, end) at the given
	// granularity, in ascending timestamp order. Pagination is handled
	// internally. A non-success response yields a *FetchError; zero bars
	// for a non-empty range yields ErrNoData.
	FetchBars(ticker string, tf Timeframe, start, end time.Time) ([]model.Bar, error)
	// FetchTradingDays returns the ISO dates (YYYY-MM-DD) on which the
	// market was open during the given year. An empty calendar yields
	// ErrNoData.
	FetchTradingDays(year int) ([]string, error)
	Name() string
}

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Bars        []model.Bar
	TradingDays map[int][]string
	BarsErr     error
	DaysErr     error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchBars(ticker string, _ Timeframe, start, end time.Time) ([]model.Bar, error) {
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	var bars []model.Bar
	for _, b := range m.Bars {
		if !b.Timestamp.Before(start) && b.Timestamp.Before(end) {
			bars = append(bars, b)
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch bars %s: %w", ticker, ErrNoData)
	}
	return bars, nil
}

func (m *MockSource) FetchTradingDays(year int) ([]string, error) {
	if m.DaysErr != nil {
		return nil, m.DaysErr
	}
	days := m.TradingDays[year]
	if len(days) == 0 {
		return nil, fmt.Errorf("trading calendar %d: %w", year, ErrNoData)
	}
	return days, nil
}

package calculator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"DriftSentinel/internal/model"
)

// ErrEmptySeries indicates aggregation was attempted with zero valid
// records. There is no meaningful partial result.
var ErrEmptySeries = errors.New("empty drift series")

// Compound builds a cumulative growth index over a date-ordered drift
// series. Starting from a base of 100.0, each record multiplies the index
// by (1 + pct_chg/100). Compounding is order-dependent, so the input must
// be in strictly increasing date order; a violation is an error, never
// silently reordered.
func Compound(series model.DriftSeries) (model.GrowthSeries, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	growth := make(model.GrowthSeries, len(series))
	index := 100.0
	for i, r := range series {
		if i > 0 && !r.Date.After(series[i-1].Date) {
			return nil, fmt.Errorf("drift series not in increasing date order at %s", r.Date.Format("2006-01-02"))
		}
		index *= 1 + r.PctChg/100
		growth[i] = model.GrowthPoint{Time: r.Date, Index: index}
	}
	return growth, nil
}

// CompoundBars applies the same compounding rule to a per-bar drift series.
func CompoundBars(drifts []model.BarDrift) (model.GrowthSeries, error) {
	if len(drifts) == 0 {
		return nil, ErrEmptySeries
	}
	growth := make(model.GrowthSeries, len(drifts))
	index := 100.0
	for i, d := range drifts {
		if i > 0 && !d.Timestamp.After(drifts[i-1].Timestamp) {
			return nil, fmt.Errorf("bar drift series not in increasing time order at %s", d.Timestamp)
		}
		index *= 1 + d.PctChg/100
		growth[i] = model.GrowthPoint{Time: d.Timestamp, Index: index}
	}
	return growth, nil
}

// Summarize computes the scalar statistics for a drift series.
func Summarize(series model.DriftSeries) (model.DriftSummary, error) {
	if len(series) == 0 {
		return model.DriftSummary{}, ErrEmptySeries
	}
	deltas := make([]float64, len(series))
	pcts := make([]float64, len(series))
	for i, r := range series {
		deltas[i] = r.Delta
		pcts[i] = r.PctChg
	}
	return model.DriftSummary{
		Periods:    len(series),
		TotalDelta: floats.Sum(deltas),
		MeanPct:    stat.Mean(pcts, nil),
		StdDevPct:  stdDev(pcts),
	}, nil
}

// SummarizeBars computes the scalar statistics for a per-bar drift series.
func SummarizeBars(drifts []model.BarDrift) (model.DriftSummary, error) {
	if len(drifts) == 0 {
		return model.DriftSummary{}, ErrEmptySeries
	}
	deltas := make([]float64, len(drifts))
	pcts := make([]float64, len(drifts))
	for i, d := range drifts {
		deltas[i] = d.Delta
		pcts[i] = d.PctChg
	}
	return model.DriftSummary{
		Periods:    len(drifts),
		TotalDelta: floats.Sum(deltas),
		MeanPct:    stat.Mean(pcts, nil),
		StdDevPct:  stdDev(pcts),
	}, nil
}

func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

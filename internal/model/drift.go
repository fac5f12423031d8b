package model

import "time"

// DriftRecord is one session's drift for a single trading date.
// Ref holds the percentage denominator: the 09:30 ET open for intraday
// records, the reference close for overnight records.
type DriftRecord struct {
	Date   time.Time // Eastern calendar date, stored as UTC midnight
	Delta  float64
	PctChg float64
	Ref    float64
}

// DriftSeries is an ordered sequence of drift records, one per trading
// date, in increasing date order. Derived from fetched bars and recomputed
// each run, never mutated in place.
type DriftSeries []DriftRecord

// BarDrift is the drift of a single bar in the continuous per-bar mode.
type BarDrift struct {
	Timestamp time.Time
	Delta     float64
	PctChg    float64
}

// GrowthPoint is one step of a compounded growth index.
type GrowthPoint struct {
	Time  time.Time
	Index float64
}

// GrowthSeries compounds percentage changes into an index starting at a
// base of 100.0.
type GrowthSeries []GrowthPoint

// Final returns the last index value, or the base 100.0 for an empty series.
func (g GrowthSeries) Final() float64 {
	if len(g) == 0 {
		return 100.0
	}
	return g[len(g)-1].Index
}

// DriftSummary holds the scalar statistics reported for a drift series.
type DriftSummary struct {
	Periods    int
	TotalDelta float64
	MeanPct    float64
	StdDevPct  float64
}

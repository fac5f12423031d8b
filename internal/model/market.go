package model

import "time"

// Bar represents a single OHLCV candlestick bar. Timestamp is the UTC
// instant at which the bar opens; bars within a fetched series are strictly
// increasing in time and share one granularity.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

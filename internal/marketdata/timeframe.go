package marketdata

import (
	"fmt"
	"time"
)

// Timeframe is the bar granularity requested from the bars endpoint.
// One parameterized fetch routine covers all granularities.
type Timeframe int

const (
	Timeframe5Min Timeframe = iota
	Timeframe15Min
	Timeframe30Min
)

// String returns the Alpaca timeframe parameter value.
func (t Timeframe) String() string {
	switch t {
	case Timeframe5Min:
		return "5Min"
	case Timeframe15Min:
		return "15Min"
	case Timeframe30Min:
		return "30Min"
	default:
		return ""
	}
}

// Duration returns the width of one bar.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case Timeframe5Min:
		return 5 * time.Minute
	case Timeframe15Min:
		return 15 * time.Minute
	case Timeframe30Min:
		return 30 * time.Minute
	default:
		return 0
	}
}

// ParseTimeframe maps a config value like "30Min" to a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "5Min":
		return Timeframe5Min, nil
	case "15Min":
		return Timeframe15Min, nil
	case "30Min":
		return Timeframe30Min, nil
	default:
		return 0, fmt.Errorf("unknown timeframe %q (want 5Min, 15Min or 30Min)", s)
	}
}

package calculator

import (
	"fmt"
	"time"

	"DriftSentinel/internal/model"
)

// SessionClassifier splits bars into intraday and overnight sessions based
// on US Eastern civil time. Conversion is zone-aware: a fixed UTC offset
// misclassifies bars on the other side of a DST transition.
type SessionClassifier struct {
	loc *time.Location
}

// NewSessionClassifier loads the America/New_York zone.
func NewSessionClassifier() (*SessionClassifier, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load eastern timezone: %w", err)
	}
	return &SessionClassifier{loc: loc}, nil
}

// Eastern returns the instant in Eastern local time.
func (c *SessionClassifier) Eastern(t time.Time) time.Time {
	return t.In(c.loc)
}

// IsIntraday reports whether the instant falls inside regular trading
// hours, 09:30-16:00 Eastern.
func (c *SessionClassifier) IsIntraday(t time.Time) bool {
	et := t.In(c.loc)
	h, m := et.Hour(), et.Minute()
	return (h == 9 && m >= 30) || (h > 9 && h < 16)
}

// Split partitions bars into intraday and overnight subsequences,
// preserving input order. Every bar lands in exactly one of the two
// outputs; nothing is dropped or duplicated.
func (c *SessionClassifier) Split(bars []model.Bar) (intraday, overnight []model.Bar) {
	for _, b := range bars {
		if c.IsIntraday(b.Timestamp) {
			intraday = append(intraday, b)
		} else {
			overnight = append(overnight, b)
		}
	}
	return intraday, overnight
}

// DateOf returns the Eastern calendar date of the instant, normalized to
// UTC midnight so dates compare and group cleanly.
func (c *SessionClassifier) DateOf(t time.Time) time.Time {
	et := t.In(c.loc)
	return time.Date(et.Year(), et.Month(), et.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey returns the Eastern calendar date as YYYY-MM-DD, the format used
// by the trading calendar.
func (c *SessionClassifier) DateKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

package calculator

import (
	"fmt"
	"log"
	"sort"
	"time"

	"DriftSentinel/internal/model"
)

// CloseConvention selects how a trading day's reference close is chosen.
type CloseConvention int

const (
	// CloseLastBar uses the close of the last bar of the Eastern trading
	// day. Early-close holidays need no special casing.
	CloseLastBar CloseConvention = iota
	// CloseFixedBar uses the close of the 15:30 ET bar. Days without that
	// bar are skipped.
	CloseFixedBar
)

// ParseCloseConvention maps a config value to a CloseConvention.
func ParseCloseConvention(s string) (CloseConvention, error) {
	switch s {
	case "last_bar":
		return CloseLastBar, nil
	case "fixed_close":
		return CloseFixedBar, nil
	default:
		return 0, fmt.Errorf("unknown close convention %q (want last_bar or fixed_close)", s)
	}
}

// MissingSessionBarError reports a trading day that lacks its required
// open or close bar. Recoverable: the day is skipped with a warning.
type MissingSessionBarError struct {
	Date string
	Want string
}

func (e *MissingSessionBarError) Error() string {
	return fmt.Sprintf("%s: missing %s bar", e.Date, e.Want)
}

// DriftCalculator computes per-bar and per-session drift.
type DriftCalculator struct {
	classifier *SessionClassifier
	closeConv  CloseConvention
}

// NewDriftCalculator creates a calculator using the given classifier and
// close convention.
func NewDriftCalculator(classifier *SessionClassifier, conv CloseConvention) *DriftCalculator {
	return &DriftCalculator{classifier: classifier, closeConv: conv}
}

// IntradayBarDrift computes delta = close - open for every intraday bar,
// with the percentage change normalized to the bar open.
func (d *DriftCalculator) IntradayBarDrift(bars []model.Bar) []model.BarDrift {
	drifts := make([]model.BarDrift, 0, len(bars))
	for _, b := range bars {
		delta := b.Close - b.Open
		pct := 0.0
		if b.Open != 0 {
			pct = delta / b.Open * 100
		}
		drifts = append(drifts, model.BarDrift{Timestamp: b.Timestamp, Delta: delta, PctChg: pct})
	}
	return drifts
}

// OvernightBarDrift computes delta = close - open for every overnight bar
// except the pivot bar at 00:00 Eastern, which prices against the previous
// bar's close: the overnight move at the transition rolls forward from the
// prior session's last trade, not the bar's own synthetic open. The first
// bar overall has no predecessor and falls back to close - open. The
// percentage change is normalized to the bar close.
func (d *DriftCalculator) OvernightBarDrift(bars []model.Bar) []model.BarDrift {
	drifts := make([]model.BarDrift, 0, len(bars))
	for i, b := range bars {
		delta := b.Close - b.Open
		if i > 0 && d.isPivot(b.Timestamp) {
			delta = b.Close - bars[i-1].Close
		}
		pct := 0.0
		if b.Close != 0 {
			pct = delta / b.Close * 100
		}
		drifts = append(drifts, model.BarDrift{Timestamp: b.Timestamp, Delta: delta, PctChg: pct})
	}
	return drifts
}

func (d *DriftCalculator) isPivot(t time.Time) bool {
	et := d.classifier.Eastern(t)
	return et.Hour() == 0 && et.Minute() == 0
}

// daySession holds the resolved open and close prices of one trading day.
type daySession struct {
	open  float64
	close float64
	err   error
}

// DailySessionDrift computes session-level drift from bars already
// filtered to trading days:
//
//	intraday drift  = today's reference close - today's 09:30 ET open
//	overnight drift = next day's 09:30 ET open - today's reference close
//
// One intraday record per day with valid open and close; one overnight
// record per consecutive valid date pair, stamped with the earlier date.
// Days missing a required bar are skipped with a warning and excluded from
// both their own intraday drift and the adjacent overnight drift;
// remaining days are unaffected.
func (d *DriftCalculator) DailySessionDrift(bars []model.Bar) (intraday, overnight model.DriftSeries) {
	byDate := make(map[time.Time][]model.Bar)
	for _, b := range bars {
		date := d.classifier.DateOf(b.Timestamp)
		byDate[date] = append(byDate[date], b)
	}

	dates := make([]time.Time, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	sessions := make([]daySession, len(dates))
	for i, date := range dates {
		sessions[i] = d.sessionPoints(date, byDate[date])
		if sessions[i].err != nil {
			log.Printf("[WARN] skipping day: %v", sessions[i].err)
		}
	}

	for i, date := range dates {
		s := sessions[i]
		if s.err != nil {
			continue
		}
		delta := s.close - s.open
		pct := 0.0
		if s.open != 0 {
			pct = delta / s.open * 100
		}
		intraday = append(intraday, model.DriftRecord{Date: date, Delta: delta, PctChg: pct, Ref: s.open})

		if i+1 >= len(dates) || sessions[i+1].err != nil {
			continue
		}
		next := sessions[i+1]
		overDelta := next.open - s.close
		overPct := 0.0
		if s.close != 0 {
			overPct = overDelta / s.close * 100
		}
		overnight = append(overnight, model.DriftRecord{Date: date, Delta: overDelta, PctChg: overPct, Ref: s.close})
	}
	return intraday, overnight
}

// sessionPoints resolves one day's 09:30 ET open and reference close.
// Lookups are done in Eastern civil time so they hold across DST changes.
func (d *DriftCalculator) sessionPoints(date time.Time, dayBars []model.Bar) daySession {
	dateKey := date.Format("2006-01-02")

	var open float64
	found := false
	for _, b := range dayBars {
		et := d.classifier.Eastern(b.Timestamp)
		if et.Hour() == 9 && et.Minute() == 30 {
			open = b.Open
			found = true
			break
		}
	}
	if !found {
		return daySession{err: &MissingSessionBarError{Date: dateKey, Want: "09:30 open"}}
	}

	switch d.closeConv {
	case CloseFixedBar:
		for _, b := range dayBars {
			et := d.classifier.Eastern(b.Timestamp)
			if et.Hour() == 15 && et.Minute() == 30 {
				return daySession{open: open, close: b.Close}
			}
		}
		return daySession{err: &MissingSessionBarError{Date: dateKey, Want: "15:30 close"}}
	default:
		// Last regular-hours bar of the day. Extended-hours bars after
		// 16:00 ET belong to the overnight window, not the session close;
		// on early-close holidays this naturally picks the final traded bar.
		closePx := 0.0
		found = false
		for _, b := range dayBars {
			if d.classifier.IsIntraday(b.Timestamp) {
				closePx = b.Close
				found = true
			}
		}
		if !found {
			return daySession{err: &MissingSessionBarError{Date: dateKey, Want: "session close"}}
		}
		return daySession{open: open, close: closePx}
	}
}

package report

import (
	"fmt"
	"strings"
	"time"

	"DriftSentinel/internal/model"
)

// RenderGrowthCSV renders a cumulative growth series as CSV for downstream
// plotting tools.
func RenderGrowthCSV(series model.GrowthSeries) string {
	var sb strings.Builder
	sb.WriteString("timestamp,index\n")
	for _, p := range series {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", p.Time.Format(time.RFC3339), p.Index))
	}
	return sb.String()
}

// RenderDriftCSV renders a daily drift series as CSV.
func RenderDriftCSV(series model.DriftSeries) string {
	var sb strings.Builder
	sb.WriteString("date,delta,pct_chg,ref\n")
	for _, r := range series {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f\n",
			r.Date.Format("2006-01-02"), r.Delta, r.PctChg, r.Ref))
	}
	return sb.String()
}

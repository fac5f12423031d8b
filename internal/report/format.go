package report

import (
	"fmt"
	"strings"

	"DriftSentinel/internal/model"
	"DriftSentinel/internal/pipeline"
)

// FormatDriftReport renders the final analysis summary. The number of
// valid periods is always reported alongside the statistics.
func FormatDriftReport(res *pipeline.Result, startYear, endYear int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== DriftSentinel | %s | %d-%d ===\n", res.Ticker, startYear, endYear))
	b.WriteString(fmt.Sprintf("Years processed: %d (skipped: %d)\n\n", res.YearsProcessed, res.YearsSkipped))

	b.WriteString("Intraday (09:30 ET open -> session close):\n")
	writeSummary(&b, res.IntradaySummary, res.IntradayGrowth)

	b.WriteString("\nOvernight (session close -> next 09:30 ET open):\n")
	writeSummary(&b, res.OvernightSummary, res.OvernightGrowth)

	return b.String()
}

func writeSummary(b *strings.Builder, s model.DriftSummary, g model.GrowthSeries) {
	b.WriteString(fmt.Sprintf("  Periods analyzed: %d\n", s.Periods))
	b.WriteString(fmt.Sprintf("  Total drift: %+.2f\n", s.TotalDelta))
	b.WriteString(fmt.Sprintf("  Mean change: %+.4f%% (stddev %.4f%%)\n", s.MeanPct, s.StdDevPct))
	b.WriteString(fmt.Sprintf("  Growth index (base 100): %.2f\n", g.Final()))
}

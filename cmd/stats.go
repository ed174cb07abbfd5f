package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/arin/gptchat/internal/stats"
)

// printStats renders a session's reply metrics.
func printStats(w io.Writer, summary *stats.Summary) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "  📊 session stats\n\n")

	if summary.Total == 0 {
		dim.Fprintf(w, "  No replies yet.\n\n")
		return
	}

	green.Fprintf(w, "  Replies:   ")
	fmt.Fprintf(w, "%d total", summary.Total)
	dim.Fprintf(w, "  (%d chars)\n", summary.TotalChars)

	green.Fprintf(w, "  Success:   ")
	if summary.SuccessRate >= 90 {
		fmt.Fprintf(w, "%.0f%%\n", summary.SuccessRate)
	} else {
		yellow.Fprintf(w, "%.0f%%\n", summary.SuccessRate)
	}

	green.Fprintf(w, "  Latency:   ")
	fmt.Fprintf(w, "%dms avg", summary.AvgLatencyMs)
	dim.Fprintf(w, "  (first fragment %dms)\n", summary.AvgFirstFragmentMs)

	if len(summary.OutcomeBreakdown) > 0 {
		fmt.Fprintln(w)
		cyan.Fprintln(w, "  Outcomes")
		for _, outcome := range slices.Sorted(maps.Keys(summary.OutcomeBreakdown)) {
			count := summary.OutcomeBreakdown[outcome]
			pct := float64(count) / float64(summary.Total) * 100
			bar := strings.Repeat("█", int(pct/5))
			dim.Fprintf(w, "  %-10s ", outcome)
			fmt.Fprintf(w, "%s %d (%.0f%%)\n", bar, count, pct)
		}
	}

	if len(summary.TopModels) > 0 {
		fmt.Fprintln(w)
		cyan.Fprintln(w, "  Models")
		for i, mc := range summary.TopModels {
			dim.Fprintf(w, "  %d. ", i+1)
			fmt.Fprintf(w, "%s ", mc.Model)
			dim.Fprintf(w, "(%dx)\n", mc.Count)
		}
	}

	fmt.Fprintln(w)
}

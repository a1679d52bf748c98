package stats

import (
	"fmt"
	"io"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// FprintSummary writes a human-readable summary of a run's statistics,
// matching the line-oriented texture the toolkit's other CLI reports use.
func FprintSummary(w io.Writer, s model.LoadTestStats) {
	fmt.Fprintf(w, "Total requests   : %d\n", s.TotalRequests)
	fmt.Fprintf(w, "Successful       : %d\n", s.Successful)
	fmt.Fprintf(w, "Failed           : %d\n", s.Failed)
	fmt.Fprintf(w, "Requests/sec     : %.2f\n", s.RPS)
	fmt.Fprintf(w, "Avg response     : %.2fms\n", s.AvgResponseMs)
	fmt.Fprintf(w, "Min / Max        : %.2fms / %.2fms\n", s.MinResponseMs, s.MaxResponseMs)
	fmt.Fprintf(w, "P50 / P90 / P99  : %.2fms / %.2fms / %.2fms\n", s.Percentiles.P50, s.Percentiles.P90, s.Percentiles.P99)

	if len(s.StatusCodes) > 0 {
		fmt.Fprintln(w, "Status codes     :")
		for _, sc := range s.StatusCodes {
			fmt.Fprintf(w, "  %d: %d\n", sc.Code, sc.Count)
		}
	}

	if s.ExternalMetric != nil {
		fmt.Fprintf(w, "Correlated metric: %s = %.4f\n", s.ExternalMetric.Query, s.ExternalMetric.Value)
	}

	if n := len(s.ErrorLogs); n > 0 {
		shown := n
		if shown > 10 {
			shown = 10
		}
		fmt.Fprintf(w, "Errors (%d, showing %d):\n", n, shown)
		for _, e := range s.ErrorLogs[:shown] {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

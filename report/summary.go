package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Row is one target line of a console summary.
type Row struct {
	Target    string
	Item      string
	Trials    int
	Successes int
	// Average is meaningful only when Successes > 0.
	Average time.Duration
	// Bytes is the payload size of one trial, 0 when unknown.
	Bytes int64
}

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	targetColor  = color.New(color.Bold)
	okColor      = color.New(color.FgGreen)
	partialColor = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed, color.Bold)
)

// DisplayResults shows the summary of benchmark performance
func DisplayResults(w io.Writer, operation string, rows []Row) {
	titleColor.Fprintf(w, "\n%s Results:\n", operation)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No trials were run.")
		return
	}

	for _, r := range rows {
		targetColor.Fprintf(w, "%s", r.Target)
		if r.Item != "" {
			fmt.Fprintf(w, " <- %s", r.Item)
		}
		if r.Bytes > 0 {
			fmt.Fprintf(w, " (%s)", humanize.IBytes(uint64(r.Bytes)))
		}
		fmt.Fprintln(w)

		statusColor(r).Fprintf(w, "  Successful Trials: %d/%d\n", r.Successes, r.Trials)
		if r.Successes == 0 {
			fmt.Fprintln(w, "  Average Duration: n/a")
			continue
		}
		fmt.Fprintf(w, "  Average Duration: %s\n", r.Average.Round(time.Millisecond))
		if r.Bytes > 0 && r.Average > 0 {
			throughput := float64(r.Bytes) / r.Average.Seconds() / (1024 * 1024) // MiB/s
			fmt.Fprintf(w, "  Data Throughput: %.2f MiB/s\n", throughput)
		}
	}
}

func statusColor(r Row) *color.Color {
	switch {
	case r.Successes == r.Trials:
		return okColor
	case r.Successes == 0:
		return failColor
	default:
		return partialColor
	}
}

package progress

import (
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"
)

// themeOnce applies the console theme a single time per process.
var themeOnce sync.Once

// ProgressBar wrapper structure
type ProgressBar struct {
	*pb.ProgressBar
}

// NewProgressBar - instantiate a progress bar writing to out.
func NewProgressBar(total int64, out io.Writer) *ProgressBar {
	// Progress bar specific theme customization.
	themeOnce.Do(func() {
		console.SetColor("Bar", color.New(color.FgGreen, color.Bold))
	})

	// Initialize the original progress bar.
	bar := pb.New64(total)
	bar.SetWriter(out)

	// Customize the refresh rate and behavior
	bar.SetRefreshRate(time.Millisecond * 125)
	bar.SetTemplateString(`{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`)

	// Start the progress bar
	bar.Start()

	return &ProgressBar{ProgressBar: bar}
}

// SetCaption sets the caption of the progress bar.
func (p *ProgressBar) SetCaption(caption string) *ProgressBar {
	p.ProgressBar.Set("prefix", caption)
	return p
}

// Step counts one finished trial.
func (p *ProgressBar) Step() {
	p.ProgressBar.Increment()
}

// Done stops refreshing and draws the final state.
func (p *ProgressBar) Done() {
	p.ProgressBar.Finish()
}

package ui

import (
	"math"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

// Progress tracks written points against the expected total.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress returns a bar over total points. A quiet run gets a no-op bar.
func NewProgress(total uint64, quiet bool) *Progress {
	if quiet {
		return &Progress{}
	}
	// -1 gives an open-ended spinner when the total does not fit
	limit := int64(-1)
	if total <= math.MaxInt64 {
		limit = int64(total)
	}
	bar := progressbar.NewOptions64(
		limit,
		progressbar.OptionSetWriter(Stderr),
		progressbar.OptionSetDescription("    generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pts"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

// Block advances the bar by one written block; it matches cpu.OnBlock.
func (p *Progress) Block(res *generator.BlockResult) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add64(int64(len(res.Records)))
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

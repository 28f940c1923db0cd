package ui

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorPurple = "\033[35m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Console output goes to Stderr so stdout stays usable as a data sink.
var Stderr io.Writer = os.Stderr

// RunInfo is what the banner block shows before generation starts.
type RunInfo struct {
	PubKey    string
	Range     *big.Int
	Chunks    uint64
	Stride    *big.Int
	Blocks    uint64
	BlockSize uint64
	Workers   int
	Outputs   []string
}

// PrintBanner shows the tool name and version
func PrintBanner(version string) {
	fmt.Fprintln(Stderr)
	fmt.Fprintf(Stderr, "  %s%s╔══════════════════════════════════════════════════════╗%s\n", ColorCyan, ColorBold, ColorReset)
	fmt.Fprintf(Stderr, "  %s%s║  XPOINTGEN %s• subtracted point pregenerator • v%-5s%s%s ║%s\n",
		ColorCyan, ColorBold, ColorDim+ColorYellow, version, ColorReset, ColorCyan+ColorBold, ColorReset)
	fmt.Fprintf(Stderr, "  %s%s╚══════════════════════════════════════════════════════╝%s\n\n", ColorCyan, ColorBold, ColorReset)
}

// PrintRunInfo displays the run configuration
func PrintRunInfo(info *RunInfo) {
	row := func(label, value string) {
		fmt.Fprintf(Stderr, "    %s%-10s%s %s\n", ColorDim, label, ColorReset, value)
	}
	fmt.Fprintf(Stderr, "    %s🔑 %s%s\n", ColorPurple+ColorBold, info.PubKey, ColorReset)
	row("range", info.Range.String())
	row("chunks", FormatNumber(info.Chunks))
	row("stride", info.Stride.String())
	row("blocks", fmt.Sprintf("%s × %s", FormatNumber(info.Blocks), FormatNumber(info.BlockSize)))
	row("workers", strconv.Itoa(info.Workers))
	for _, o := range info.Outputs {
		row("output", ColorYellow+o+ColorReset)
	}
	fmt.Fprintln(Stderr)
}

// PrintSummary shows the final counts
func PrintSummary(sum *generator.Summary) {
	rate := 0.0
	if secs := sum.Elapsed.Seconds(); secs > 0 {
		rate = float64(sum.Points) / secs
	}
	fmt.Fprintf(Stderr, "\n    %s✔ Done%s │ %s points │ %s │ %s\n",
		ColorGreen+ColorBold, ColorReset,
		FormatNumber(sum.Points),
		FormatDuration(sum.Elapsed),
		FormatRate(rate))
}

// PrintCancelled reports an interrupted run
func PrintCancelled(stats generator.Stats) {
	ClearLine()
	fmt.Fprintf(Stderr, "\n    %s⚠ Cancelled%s │ %s points │ %s\n",
		ColorYellow+ColorBold, ColorReset,
		FormatNumber(stats.Points),
		FormatDuration(time.Duration(stats.ElapsedSecs*float64(time.Second))))
}

// PrintError shows a fatal error
func PrintError(err error) {
	fmt.Fprintf(Stderr, "\n    %s✗ Error: %v%s\n", ColorRed, err, ColorReset)
}

// FormatRate formats points per second nicely
func FormatRate(rate float64) string {
	if rate >= 1000000 {
		return fmt.Sprintf("%.1fM/s", rate/1000000)
	}
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	return fmt.Sprintf("%.0f/s", rate)
}

// ClearLine clears the current line
func ClearLine() {
	fmt.Fprint(Stderr, "\r\033[2K")
}

// FormatNumber adds commas to large numbers
func FormatNumber(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if n < 1000 {
		return s
	}
	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, s[i])
	}
	return string(result)
}

// FormatDuration formats duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}

package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultMessage = "Processing"
	defaultTotal   = 100.0
	barWidth       = 30
	fallbackCols   = 80
)

// isTerminal is replaced in tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the column count of w, or fallbackCols.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return fallbackCols
}

// Bar renders a single-line progress bar. On a terminal the line is redrawn in
// place; elsewhere only milestone lines are printed.
type Bar struct {
	out       io.Writer
	errOut    io.Writer
	message   string
	current   float64
	total     float64
	isTTY     bool
	startTime time.Time
	bar       progress.Model
	now       func() time.Time
}

// NewBar creates a bar writing to out. An empty message becomes "Processing"
// and a non-positive total becomes 100.
func NewBar(out io.Writer, message string, total float64) *Bar {
	if message == "" {
		message = defaultMessage
	}
	if total <= 0 {
		total = defaultTotal
	}
	return &Bar{
		out:       out,
		errOut:    os.Stderr,
		message:   message,
		total:     total,
		isTTY:     isTerminal(out),
		startTime: time.Now(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		now:       time.Now,
	}
}

// Update moves the bar to current, clamped to the total.
func (b *Bar) Update(current float64, message string) {
	b.current = math.Min(current, b.total)
	if message != "" {
		b.message = message
	}

	if b.isTTY {
		b.render()
		return
	}

	// Non-TTY: just log milestone updates
	if math.Mod(current, 25) == 0 || b.current == b.total {
		fmt.Fprintf(b.out, "%s: %d%%\n", b.message, b.percent())
	}
}

// Complete fills the bar and ends the line.
func (b *Bar) Complete(finalMessage string) {
	b.current = b.total
	if finalMessage != "" {
		b.message = finalMessage
	}

	if b.isTTY {
		b.render()
		fmt.Fprintln(b.out)
		return
	}
	fmt.Fprintf(b.out, "%s: 100%%\n", b.message)
}

// Error abandons the bar and reports message on stderr.
func (b *Bar) Error(message string) {
	if b.isTTY {
		Clear(b.out)
	}
	fmt.Fprintf(b.errOut, "✗ %s\n", message)
}

// Percent returns the completed share as a whole percentage.
func (b *Bar) Percent() int {
	return b.percent()
}

func (b *Bar) percent() int {
	if b.total <= 0 {
		return 0
	}
	return int(math.Round(b.current / b.total * 100))
}

func (b *Bar) render() {
	ratio := 0.0
	if b.total > 0 {
		ratio = b.current / b.total
	}
	elapsed := int(math.Round(b.now().Sub(b.startTime).Seconds()))
	suffix := fmt.Sprintf(" [%s] %d%% (%ds)", b.bar.ViewAs(ratio), b.percent(), elapsed)

	// Keep the whole line on one row so that \r can overwrite it.
	room := terminalWidth(b.out) - lipgloss.Width(suffix) - 1
	msg := b.message
	if room > 0 && runewidth.StringWidth(msg) > room {
		msg = runewidth.Truncate(msg, room, "…")
	}
	fmt.Fprintf(b.out, "\r%s%s", msg, suffix)
}

// Clear blanks the current progress line on a terminal.
func Clear(out io.Writer) {
	if isTerminal(out) {
		fmt.Fprint(out, "\r"+strings.Repeat(" ", fallbackCols)+"\r")
	}
}

// FormatDuration renders seconds as "42s", "3m 5s" or "2h 10m".
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", int(math.Round(seconds)))
	}
	if seconds < 3600 {
		mins := int(math.Floor(seconds / 60))
		secs := int(math.Round(math.Mod(seconds, 60)))
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	hours := int(math.Floor(seconds / 3600))
	mins := int(math.Floor(math.Mod(seconds, 3600) / 60))
	return fmt.Sprintf("%dh %dm", hours, mins)
}

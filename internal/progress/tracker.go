package progress

import (
	"fmt"
	"io"
	"math"
	"sync"

	"protokoll/internal/mcpclient"
	"protokoll/pkg/logging"
)

// Tracker turns MCP progress notifications into progress bars, one per
// progress token.
type Tracker struct {
	out  io.Writer
	mu   sync.Mutex
	bars map[string]*Bar
	// lastMilestone remembers the last 10% step logged per token on non-TTY
	// outputs so each step is printed once.
	lastMilestone map[string]int
}

// NewTracker creates a tracker rendering to out.
func NewTracker(out io.Writer) *Tracker {
	return &Tracker{
		out:           out,
		bars:          make(map[string]*Bar),
		lastMilestone: make(map[string]int),
	}
}

// Handle renders one update. Updates without a token, or without both
// progress and total, are ignored.
func (t *Tracker) Handle(update mcpclient.ProgressUpdate) {
	if update.ProgressToken == "" {
		return
	}
	if update.Progress == nil || update.Total == nil {
		logging.Debug("Progress", "Ignoring update without totals for %s", update.ProgressToken)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bar, ok := t.bars[update.ProgressToken]
	if !ok {
		bar = NewBar(t.out, update.Message, *update.Total)
		bar.errOut = t.out
		t.bars[update.ProgressToken] = bar
		t.lastMilestone[update.ProgressToken] = -1
	}
	if *update.Total > 0 {
		bar.total = *update.Total
	}

	if bar.isTTY {
		bar.Update(*update.Progress, update.Message)
		return
	}

	bar.current = math.Min(*update.Progress, bar.total)
	if update.Message != "" {
		bar.message = update.Message
	}
	percent := bar.percent()
	if percent%10 == 0 && percent != t.lastMilestone[update.ProgressToken] {
		t.lastMilestone[update.ProgressToken] = percent
		fmt.Fprintf(t.out, "%s: %d%%\n", bar.message, percent)
	}
}

// Finish closes the bar for token, if one was started. A nil err completes
// the bar; otherwise the bar is abandoned and err is reported.
func (t *Tracker) Finish(token string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bar, ok := t.bars[token]
	if !ok {
		return
	}
	defer func() {
		delete(t.bars, token)
		delete(t.lastMilestone, token)
	}()

	if err != nil {
		bar.Error(err.Error())
		return
	}
	if bar.isTTY || t.lastMilestone[token] != 100 {
		bar.Complete("")
	}
}

// Package progress emits incremental load progress. Reporting is purely
// observational: a disabled or absent reporter never affects the load.
package progress

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
)

// Reporter receives progress for one running load. Start is called with the
// total record count before the first chunk, Update with the cumulative
// processed count after each chunk, Stop exactly once when the load ends.
type Reporter interface {
	Start(total int)
	Update(current int)
	Stop()
}

// Nop discards all progress. Used in headless contexts.
type Nop struct{}

func (Nop) Start(int)  {}
func (Nop) Update(int) {}
func (Nop) Stop()      {}

// Bar renders a terminal progress bar with percentage and a throughput
// derived ETA.
type Bar struct {
	title string
	bar   *pterm.ProgressbarPrinter
	eta   *estimator
	last  int
}

// NewBar returns a Bar titled title, typically "SITE/kind".
func NewBar(title string) *Bar {
	return &Bar{title: title}
}

func (b *Bar) Start(total int) {
	b.eta = newEstimator(total, time.Now)
	b.last = 0
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(b.title).
		Start()
	if err != nil {
		// No terminal; stay silent rather than failing the load.
		b.bar = nil
		return
	}
	b.bar = bar
}

func (b *Bar) Update(current int) {
	if b.eta != nil {
		b.eta.observe(current)
	}
	if b.bar == nil {
		return
	}
	if delta := current - b.last; delta > 0 {
		b.bar.Add(delta)
		b.last = current
	}
	if remaining, ok := b.eta.estimate(); ok {
		b.bar.UpdateTitle(fmt.Sprintf("%s (ETA %s)", b.title, remaining.Round(time.Second)))
	}
}

func (b *Bar) Stop() {
	if b.bar != nil {
		_, _ = b.bar.Stop()
		b.bar = nil
	}
}

package progress

import "time"

// minSamples observations and minWindow of elapsed time are required before
// an ETA is offered; throughput over a shorter window is noise.
const (
	minSamples = 2
	minWindow  = 500 * time.Millisecond
)

// estimator derives a remaining-time estimate from observed throughput. The
// estimate is advisory and unknown until enough samples exist.
type estimator struct {
	total   int
	now     func() time.Time
	start   time.Time
	current int
	samples int
}

func newEstimator(total int, now func() time.Time) *estimator {
	return &estimator{total: total, now: now, start: now()}
}

func (e *estimator) observe(current int) {
	e.current = current
	e.samples++
}

// estimate returns the remaining duration, or ok=false while unknown.
func (e *estimator) estimate() (time.Duration, bool) {
	if e.samples < minSamples || e.current <= 0 || e.total <= 0 {
		return 0, false
	}
	elapsed := e.now().Sub(e.start)
	if elapsed < minWindow {
		return 0, false
	}
	if e.current >= e.total {
		return 0, true
	}
	perRecord := elapsed / time.Duration(e.current)
	return perRecord * time.Duration(e.total-e.current), true
}

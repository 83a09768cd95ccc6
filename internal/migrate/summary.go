package migrate

import (
	"time"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
)

// Skip records one entity-level skip: a whole site (Kind empty) or a single
// pair. Skipped sites and pairs get no Outcome.
type Skip struct {
	Site   string
	Kind   gestmag.Kind
	Reason string
}

// Summary aggregates a whole run. It is created when the run starts and
// finalized when the run completes; an aborted connection attempt produces
// no Summary at all.
type Summary struct {
	Started  time.Time
	Elapsed  time.Duration
	Outcomes []loader.Outcome
	Skips    []Skip
}

// TotalSource returns the summed source record count across all pairs.
func (s *Summary) TotalSource() int64 {
	var n int64
	for _, o := range s.Outcomes {
		n += int64(o.SourceCount)
	}
	return n
}

// TotalInserted returns the summed inserted count across all pairs. Lower
// than TotalSource means records were lost to destination rejects; the gap
// is deliberate output, never silently swallowed.
func (s *Summary) TotalInserted() int64 {
	var n int64
	for _, o := range s.Outcomes {
		n += int64(o.Inserted)
	}
	return n
}

// Failures returns the outcomes that lost at least one record.
func (s *Summary) Failures() []loader.Outcome {
	var out []loader.Outcome
	for _, o := range s.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

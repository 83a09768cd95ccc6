// Package sanitize normalizes raw archive records before storage. Legacy
// archives carry duplicate column names and malformed numeric cells; the
// destination must never receive either.
package sanitize

import (
	"math"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
)

// Record returns a sanitized copy of r. Rules, in field order:
//
//   - a field name already emitted is discarded (first write wins)
//   - a numeric value that is NaN or ±Inf becomes 0
//   - everything else passes through unchanged, including nil and ""
//
// Record never fails and is idempotent.
func Record(r gestmag.Record) gestmag.Record {
	out := make(gestmag.Record, 0, len(r))
	seen := make(map[string]struct{}, len(r))
	for _, f := range r {
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		if n, ok := f.Value.(float64); ok {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				f.Value = float64(0)
			}
		}
		out = append(out, f)
	}
	return out
}

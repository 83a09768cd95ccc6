// Package loader replaces the contents of one destination collection with
// the records of one archive: delete everything, then insert sanitized
// records in fixed-size unordered chunks. Individual record failures are
// counted and logged, never fatal; only the orchestrator decides to skip a
// pair, and only connection loss aborts a run.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/archive"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/errlog"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/progress"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/sanitize"
)

// DefaultChunkSize is the number of records written per insert when no size
// is configured.
const DefaultChunkSize = 1000

// Store is the destination handle for one (site, kind) pair. Insert returns
// how many of docs were actually written; a partial failure returns both a
// positive count and the error.
type Store interface {
	Clear(ctx context.Context) (int64, error)
	Insert(ctx context.Context, docs []any) (int, error)
}

// RetryMode selects what happens when a whole chunk fails to write.
type RetryMode string

const (
	// RetrySkip logs the chunk failure, counts its records as not
	// inserted, and moves on.
	RetrySkip RetryMode = "skip"
	// RetryChunk re-attempts a fully failed chunk before giving up on it.
	// Partially written chunks are never re-attempted: the records that
	// made it in would be duplicated.
	RetryChunk RetryMode = "retry"
)

// RetryPolicy configures chunk-failure handling.
type RetryPolicy struct {
	Mode     RetryMode
	Attempts int
}

// Outcome is the terminal result of loading one (site, kind) pair.
type Outcome struct {
	Site           string
	Kind           gestmag.Kind
	SourceCount    int
	Inserted       int
	MissingArchive bool
	Errors         []string
}

// Failed reports whether any record of the pair was lost.
func (o Outcome) Failed() bool {
	return len(o.Errors) > 0 || o.Inserted < o.SourceCount
}

// Loader drives delete-then-chunked-insert for single pairs. A zero Loader
// is usable: default chunk size, skip policy, no progress, no error log.
type Loader struct {
	ChunkSize int
	Encoding  string
	Retry     RetryPolicy
	// NewReporter builds the progress reporter for one load, keyed by a
	// "SITE/kind" label. nil disables progress entirely.
	NewReporter func(label string) progress.Reporter
	ErrLog      *errlog.Log
}

// Load replaces the destination rows of (site, kind) with the sanitized
// records of the archive at path. It never returns an error: every failure
// is folded into the outcome, and a missing archive yields a zero-count
// outcome without touching the destination.
func (l *Loader) Load(ctx context.Context, store Store, site string, kind gestmag.Kind, path string) Outcome {
	out := Outcome{Site: site, Kind: kind}

	if _, err := os.Stat(path); err != nil {
		out.MissingArchive = true
		l.fail(&out, "%s/%s: archive %s missing, load not attempted", site, kind, path)
		return out
	}

	arch, err := archive.Open(path, l.Encoding)
	if err != nil {
		l.fail(&out, "%s/%s: %v", site, kind, err)
		return out
	}
	defer arch.Close()

	out.SourceCount = arch.Count()

	if _, err := store.Clear(ctx); err != nil {
		l.fail(&out, "%s/%s: %v", site, kind, err)
		return out
	}

	reporter := l.reporter(fmt.Sprintf("%s/%s", site, kind))
	reporter.Start(out.SourceCount)
	defer reporter.Stop()

	chunkSize := l.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	chunk := make([]any, 0, chunkSize)
	processed := 0

	flush := func() {
		if len(chunk) == 0 {
			return
		}
		out.Inserted += l.insertChunk(ctx, store, site, kind, chunk, &out)
		processed += len(chunk)
		chunk = chunk[:0]
		reporter.Update(processed)
	}

	for {
		rec, err := arch.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.fail(&out, "%s/%s: read record: %v", site, kind, err)
			continue
		}
		chunk = append(chunk, toDocument(sanitize.Record(rec)))
		if len(chunk) >= chunkSize {
			flush()
		}
	}
	flush()

	return out
}

// insertChunk writes one chunk and returns how many records landed. A
// partial failure (some records rejected by the destination) is final for
// the rejected records; a total failure is retried per policy.
func (l *Loader) insertChunk(ctx context.Context, store Store, site string, kind gestmag.Kind, chunk []any, out *Outcome) int {
	attempts := 1
	if l.Retry.Mode == RetryChunk && l.Retry.Attempts > 1 {
		attempts = l.Retry.Attempts
	}

	for attempt := 1; ; attempt++ {
		n, err := store.Insert(ctx, chunk)
		if err == nil {
			return n
		}
		if n > 0 {
			l.fail(out, "%s/%s: %d of %d records rejected: %v", site, kind, len(chunk)-n, len(chunk), err)
			return n
		}
		if attempt < attempts {
			continue
		}
		l.fail(out, "%s/%s: chunk of %d records failed after %d attempt(s): %v", site, kind, len(chunk), attempt, err)
		return 0
	}
}

func (l *Loader) reporter(label string) progress.Reporter {
	if l.NewReporter == nil {
		return progress.Nop{}
	}
	if r := l.NewReporter(label); r != nil {
		return r
	}
	return progress.Nop{}
}

// fail records one failure in both the outcome and the persistent error
// log. The error log write is best-effort.
func (l *Loader) fail(out *Outcome, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	out.Errors = append(out.Errors, msg)
	if l.ErrLog != nil {
		l.ErrLog.Record("%s", msg)
	}
}

// toDocument converts a sanitized record to an ordered document. Field
// order is preserved; sanitization has already removed duplicate names.
func toDocument(rec gestmag.Record) bson.D {
	doc := make(bson.D, 0, len(rec))
	for _, f := range rec {
		doc = append(doc, bson.E{Key: f.Name, Value: f.Value})
	}
	return doc
}

// Package migrate orchestrates a full migration run: every configured site
// crossed with every record kind, each pair loaded independently. A pair's
// failure never stops the run; only losing the destination connection does.
package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/binder"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/errlog"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
)

// StoreFactory builds the destination handle for a resolved binding.
type StoreFactory func(collection string) loader.Store

// Runner drives the Running phase of a migration. All state of a run lives
// here and in the Summary it produces; nothing is process-global.
type Runner struct {
	Registry   *binder.Registry
	Stores     StoreFactory
	Loader     *loader.Loader
	SourceRoot string

	// Sites restricts and orders the run; empty means every site in the
	// registry, sorted.
	Sites []string

	// Workers bounds how many (site, kind) pairs load concurrently.
	// 1 (the default) preserves strictly sequential, deterministic
	// processing; pairs share no state, so higher values are safe when
	// the destination can take concurrent writers.
	Workers int

	Log    *zap.Logger
	ErrLog *errlog.Log
}

// pair is one unit of work.
type pair struct {
	site    string
	kind    gestmag.Kind
	binding binder.Binding
	path    string
}

// Run processes every scheduled pair and always completes: entity-level
// problems (missing site directory, unbound pair, missing archive) are
// logged and skipped, record-level problems are absorbed by the loader.
func (r *Runner) Run(ctx context.Context) *Summary {
	log := r.log()
	started := time.Now()
	summary := &Summary{Started: started}

	pairs := r.schedule(summary)

	results := make([]*loader.Outcome, len(pairs))
	group, ctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)

	for i, p := range pairs {
		i, p := i, p
		group.Go(func() error {
			out := r.Loader.Load(ctx, r.Stores(p.binding.Collection), p.site, p.kind, p.path)
			results[i] = &out
			log.Info("pair complete",
				zap.String("site", p.site),
				zap.String("kind", p.kind.String()),
				zap.Int("source", out.SourceCount),
				zap.Int("inserted", out.Inserted),
				zap.Int("errors", len(out.Errors)),
				zap.Duration("elapsed", time.Since(started)),
			)
			return nil
		})
	}
	// Workers never return errors; every failure is folded into outcomes.
	_ = group.Wait()

	for _, out := range results {
		if out != nil {
			summary.Outcomes = append(summary.Outcomes, *out)
		}
	}
	summary.Elapsed = time.Since(started)

	log.Info("run complete",
		zap.Int("pairs", len(summary.Outcomes)),
		zap.Int("skipped", len(summary.Skips)),
		zap.Int64("source", summary.TotalSource()),
		zap.Int64("inserted", summary.TotalInserted()),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary
}

// schedule walks sites × kinds in fixed order and returns the loadable
// pairs, recording entity-level skips on the summary as it goes.
func (r *Runner) schedule(summary *Summary) []pair {
	log := r.log()

	sites := r.Sites
	if len(sites) == 0 {
		sites = r.Registry.Sites()
	}

	var pairs []pair
	for _, site := range sites {
		siteDir := filepath.Join(r.SourceRoot, site)
		if info, err := os.Stat(siteDir); err != nil || !info.IsDir() {
			r.skip(summary, site, "", fmt.Sprintf("site directory %s missing, site skipped", siteDir))
			continue
		}

		for _, kind := range gestmag.Kinds() {
			binding, ok := r.Registry.Resolve(site, kind)
			if !ok {
				r.skip(summary, site, kind, fmt.Sprintf("no store binding for %s/%s, pair skipped", site, kind))
				continue
			}
			pairs = append(pairs, pair{
				site:    site,
				kind:    kind,
				binding: binding,
				path:    filepath.Join(siteDir, archivePath(siteDir, kind)),
			})
		}
	}

	log.Info("run scheduled", zap.Int("sites", len(sites)), zap.Int("pairs", len(pairs)))
	return pairs
}

// archivePath returns the archive filename for kind inside siteDir,
// preferring the dBase export and falling back to a CSV sibling.
func archivePath(siteDir string, kind gestmag.Kind) string {
	name := kind.ArchiveFile()
	if _, err := os.Stat(filepath.Join(siteDir, name)); err == nil {
		return name
	}
	csvName := name[:len(name)-len(filepath.Ext(name))] + ".csv"
	if _, err := os.Stat(filepath.Join(siteDir, csvName)); err == nil {
		return csvName
	}
	return name
}

func (r *Runner) skip(summary *Summary, site string, kind gestmag.Kind, reason string) {
	summary.Skips = append(summary.Skips, Skip{Site: site, Kind: kind, Reason: reason})
	r.log().Warn(reason, zap.String("site", site))
	if r.ErrLog != nil {
		r.ErrLog.Record("%s", reason)
	}
}

func (r *Runner) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}

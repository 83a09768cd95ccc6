package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/binder"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/database"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/errlog"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/progress"
)

// Run executes a complete migration: load the bindings registry, connect to
// the destination, process every pair, and return the summary. A returned
// error means the run aborted before any data movement; connection-level
// failures are the only ones that propagate.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Summary, error) {
	var newReporter func(label string) progress.Reporter
	if !cfg.NoProgress {
		newReporter = func(label string) progress.Reporter {
			return progress.NewBar(label)
		}
	}
	return RunWith(ctx, cfg, log, newReporter)
}

// RunWith is Run with a caller-supplied progress reporter factory. The TUI
// uses it to route progress into its own event loop; nil disables progress.
func RunWith(ctx context.Context, cfg *config.Config, log *zap.Logger, newReporter func(label string) progress.Reporter) (*Summary, error) {
	errLog := errlog.Open(cfg.ErrorLogPath)
	defer errLog.Close()

	registry, err := binder.Load(cfg.BindingsDir, func(format string, args ...any) {
		log.Warn(fmt.Sprintf(format, args...))
		errLog.Record(format, args...)
	})
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		errLog.Record("fatal: %v", err)
		return nil, err
	}
	defer db.Close()
	log.Info("connected to destination", zap.String("database", cfg.MongoDB))

	runner := &Runner{
		Registry:   registry,
		Stores:     func(collection string) loader.Store { return db.Store(collection) },
		SourceRoot: cfg.SourceRoot,
		Sites:      cfg.Sites,
		Workers:    cfg.Workers,
		Log:        log,
		ErrLog:     errLog,
		Loader: &loader.Loader{
			ChunkSize:   cfg.ChunkSize,
			Encoding:    cfg.Encoding,
			Retry:       loader.RetryPolicy{Mode: cfg.RetryMode, Attempts: cfg.RetryAttempts},
			NewReporter: newReporter,
			ErrLog:      errLog,
		},
	}

	return runner.Run(ctx), nil
}

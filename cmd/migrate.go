package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/migrate"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/report"
)

var (
	migrateSites   string
	migrateChunk   int
	migrateWorkers int
	noProgress     bool
	summaryCSV     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the full Gestmag migration",
	Long: `Run the migration for every configured site and record type. Each
(site, record type) pair replaces its destination collection: existing rows
are deleted, then the archive's sanitized records are inserted in chunks.
Missing sites, missing archives and unbound pairs are skipped and logged;
only a destination connection failure aborts the run.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateSites, "sites", "s", "", "Comma-separated site codes to migrate (default: all bound sites)")
	migrateCmd.Flags().IntVar(&migrateChunk, "chunk-size", 0, "Records per insert chunk (default from MIGRATE_CHUNK_SIZE or 1000)")
	migrateCmd.Flags().IntVar(&migrateWorkers, "workers", 0, "Concurrent (site, record type) loads (default from MIGRATE_WORKERS or 1)")
	migrateCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bars")
	migrateCmd.Flags().StringVar(&summaryCSV, "summary-csv", "", "Write the run summary to a CSV file")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if migrateSites != "" {
		cfg.Sites = nil
		for _, s := range strings.Split(migrateSites, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Sites = append(cfg.Sites, s)
			}
		}
	}
	if migrateChunk > 0 {
		cfg.ChunkSize = migrateChunk
	}
	if migrateWorkers > 0 {
		cfg.Workers = migrateWorkers
	}
	if noProgress {
		cfg.NoProgress = true
	}

	logger := newLogger()
	defer logger.Sync()

	summary, err := migrate.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("migration aborted: %w", err)
	}

	report.Print(summary)

	if summaryCSV != "" {
		if err := report.WriteCSV(summary, summaryCSV); err != nil {
			return err
		}
	}
	return nil
}

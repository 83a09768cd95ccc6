package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/backup"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/binder"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/database"
)

var (
	backupOutputDir  string
	backupFormat     string
	backupCollection string
	backupSite       string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump destination collections before migrating",
	Long: `Dump destination collections to BSON or JSON files. A migration run
replaces each bound collection wholesale, so dump a site before migrating it
if you may need the previous contents back.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutputDir, "output", "o", "./backups", "Output directory for backup files")
	backupCmd.Flags().StringVarP(&backupFormat, "format", "f", "bson", "Backup format: bson or json")
	backupCmd.Flags().StringVarP(&backupCollection, "collection", "c", "", "Single collection to dump")
	backupCmd.Flags().StringVarP(&backupSite, "site", "s", "", "Dump every collection bound to this site")
}

func runBackup(cmd *cobra.Command, args []string) error {
	if backupFormat != "bson" && backupFormat != "json" {
		return fmt.Errorf("invalid format: %s. Use 'bson' or 'json'", backupFormat)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger()
	defer logger.Sync()

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer db.Close()

	service := backup.NewService(db)
	ctx := cmd.Context()

	var files []string
	switch {
	case backupCollection != "":
		file, err := service.DumpCollection(ctx, backupCollection, backupOutputDir, backupFormat)
		if err != nil {
			return err
		}
		files = []string{file}
	case backupSite != "":
		registry, err := binder.Load(cfg.BindingsDir, func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		})
		if err != nil {
			return err
		}
		files, err = service.DumpSite(ctx, registry, backupSite, backupOutputDir, backupFormat)
		if err != nil {
			return err
		}
	default:
		files, err = service.DumpDatabase(ctx, backupOutputDir, backupFormat)
		if err != nil {
			return err
		}
	}

	logger.Info("backup complete", zap.Int("files", len(files)))
	for _, file := range files {
		logger.Info("wrote backup file", zap.String("path", file))
	}
	return nil
}

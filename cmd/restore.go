package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/backup"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/database"
)

var (
	restoreInput      string
	restoreFormat     string
	restoreCollection string
	restoreDrop       bool
	restoreYes        bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a destination collection from a backup dump",
	RunE:  runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreInput, "input", "i", "", "Backup file to restore (required)")
	restoreCmd.Flags().StringVarP(&restoreFormat, "format", "f", "", "Backup format: bson or json (auto-detected if not specified)")
	restoreCmd.Flags().StringVarP(&restoreCollection, "collection", "c", "", "Target collection (defaults to the name encoded in the backup filename)")
	restoreCmd.Flags().BoolVar(&restoreDrop, "drop", false, "Clear the collection before restoring")
	restoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "Skip the confirmation prompt")

	restoreCmd.MarkFlagRequired("input")
}

func runRestore(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(restoreInput); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", restoreInput)
	}

	format := restoreFormat
	if format == "" {
		switch filepath.Ext(restoreInput) {
		case ".bson":
			format = "bson"
		case ".json":
			format = "json"
		default:
			return fmt.Errorf("cannot auto-detect format from extension %q, specify --format", filepath.Ext(restoreInput))
		}
	}
	if format != "bson" && format != "json" {
		return fmt.Errorf("invalid format: %s. Use 'bson' or 'json'", format)
	}

	target := restoreCollection
	if target == "" {
		// Dump files are named backup_<collection>_<timestamp>.<ext>.
		basename := filepath.Base(restoreInput)
		if strings.HasPrefix(basename, "backup_") {
			if parts := strings.Split(basename, "_"); len(parts) >= 3 {
				target = parts[1]
			}
		}
		if target == "" {
			return fmt.Errorf("cannot determine target collection name, specify --collection")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !restoreYes {
		fmt.Printf("Restore %s into %s.%s (drop existing: %v)?\n", restoreInput, cfg.MongoDB, target, restoreDrop)
		if !confirm("Do you want to continue?") {
			fmt.Println("Restore cancelled")
			return nil
		}
	}

	if err := backup.ValidateDumpFile(restoreInput, format); err != nil {
		return fmt.Errorf("backup file validation failed: %w", err)
	}

	logger := newLogger()
	defer logger.Sync()

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer db.Close()

	n, err := backup.NewService(db).Restore(cmd.Context(), target, restoreInput, format, restoreDrop)
	if err != nil {
		return err
	}

	logger.Info("restore complete", zap.String("collection", target), zap.Int("documents", n))
	return nil
}

func confirm(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

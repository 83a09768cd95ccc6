// Package backup dumps destination collections to files before a migration
// run. A run replaces each bound collection wholesale, so a dump is the
// only way back to the previous contents.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/binder"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/database"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
)

type Service struct {
	db *database.Mongo
}

func NewService(db *database.Mongo) *Service {
	return &Service{db: db}
}

// DumpCollection writes one collection to a timestamped file in outputDir
// and returns the file path.
func (s *Service) DumpCollection(ctx context.Context, collectionName, outputDir, format string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(outputDir, fmt.Sprintf("backup_%s_%s.%s", collectionName, timestamp, format))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	if _, err := s.db.DumpCollection(ctx, collectionName, file, format); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("backup failed: %w", err)
	}

	return path, nil
}

// DumpSite dumps every collection bound to site, one file per record kind.
// This is what a cautious operator runs right before migrating the site.
func (s *Service) DumpSite(ctx context.Context, registry *binder.Registry, site, outputDir, format string) ([]string, error) {
	var files []string
	for _, kind := range gestmag.Kinds() {
		binding, ok := registry.Resolve(site, kind)
		if !ok {
			continue
		}
		file, err := s.DumpCollection(ctx, binding.Collection, outputDir, format)
		if err != nil {
			return files, fmt.Errorf("failed to dump %s/%s: %w", site, kind, err)
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no bindings for site %s", site)
	}
	return files, nil
}

// DumpDatabase dumps every collection in the destination database.
func (s *Service) DumpDatabase(ctx context.Context, outputDir, format string) ([]string, error) {
	collections, err := s.db.ListCollections()
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("no collections found in database")
	}

	var files []string
	for _, collection := range collections {
		if collection == "system.indexes" {
			continue
		}
		file, err := s.DumpCollection(ctx, collection, outputDir, format)
		if err != nil {
			return files, fmt.Errorf("failed to backup collection %s: %w", collection, err)
		}
		files = append(files, file)
	}
	return files, nil
}

// Restore loads a dump file back into a collection.
func (s *Service) Restore(ctx context.Context, collectionName, inputFile, format string, drop bool) (int, error) {
	file, err := os.Open(inputFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	n, err := s.db.LoadDump(ctx, collectionName, file, format, drop)
	if err != nil {
		return n, fmt.Errorf("restore failed: %w", err)
	}
	return n, nil
}

// ValidateDumpFile rejects empty files and extension/format mismatches
// before a restore touches the destination.
func ValidateDumpFile(filename, expectedFormat string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("cannot open backup file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("backup file is empty")
	}

	extension := filepath.Ext(filename)
	if expectedFormat == "json" && extension != ".json" {
		return fmt.Errorf("expected JSON file but got %s", extension)
	}
	if expectedFormat == "bson" && extension != ".bson" {
		return fmt.Errorf("expected BSON file but got %s", extension)
	}
	return nil
}

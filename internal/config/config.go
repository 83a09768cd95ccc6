// Package config loads the migration configuration from environment
// variables. A .env file is honored when present (loaded by the CLI layer
// before Load runs).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
)

// Config is everything a run needs. MongoURI is the only required value;
// its absence is startup-fatal before any connection attempt.
type Config struct {
	MongoURI    string
	MongoDB     string
	SourceRoot  string
	BindingsDir string

	// Sites optionally restricts the run to specific site codes. Empty
	// means every site known to the bindings registry.
	Sites []string

	ChunkSize     int
	Workers       int
	RetryMode     loader.RetryMode
	RetryAttempts int

	ErrorLogPath string
	Encoding     string
	NoProgress   bool
}

// Load reads configuration from the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       envOr("MONGO_DB", "robotnc"),
		SourceRoot:    envOr("SOURCE_ROOT", "./data"),
		BindingsDir:   envOr("BINDINGS_DIR", "./bindings"),
		ChunkSize:     envInt("MIGRATE_CHUNK_SIZE", loader.DefaultChunkSize),
		Workers:       envInt("MIGRATE_WORKERS", 1),
		RetryMode:     loader.RetryMode(envOr("MIGRATE_RETRY", string(loader.RetrySkip))),
		RetryAttempts: envInt("MIGRATE_RETRY_ATTEMPTS", 3),
		ErrorLogPath:  envOr("ERROR_LOG", "migration-errors.log"),
		Encoding:      envOr("ARCHIVE_ENCODING", "UTF8"),
		NoProgress:    os.Getenv("NO_PROGRESS") != "",
	}

	if sites := os.Getenv("MIGRATE_SITES"); sites != "" {
		for _, s := range strings.Split(sites, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Sites = append(cfg.Sites, s)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is not set")
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("MIGRATE_CHUNK_SIZE must be at least 1, got %d", c.ChunkSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("MIGRATE_WORKERS must be at least 1, got %d", c.Workers)
	}
	switch c.RetryMode {
	case loader.RetrySkip, loader.RetryChunk:
	default:
		return fmt.Errorf("MIGRATE_RETRY must be %q or %q, got %q", loader.RetrySkip, loader.RetryChunk, c.RetryMode)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("MIGRATE_RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/docpush/docpush/internal/docstore"
	"github.com/docpush/docpush/internal/sync"
	"github.com/docpush/docpush/internal/utils"
)

const (
	DefaultRateLimit  = 2.0 // requests per second against the store
	DefaultBurst      = 1
	DefaultMaxRetries = 4
)

// Config is everything one reconciliation run needs. The CLI fills it
// from flags, env and an optional config file via viper.
type Config struct {
	Dir        string   `json:"dir"`
	FolderLink string   `json:"folder_link"`
	Token      string   `json:"-"`
	CacheFile  string   `json:"cache_file"`
	Include    []string `json:"include"`
	Clean      bool     `json:"-"`
	RateLimit  float64  `json:"rate_limit"`
	Burst      int      `json:"burst"`
	MaxRetries int      `json:"max_retries"`
	Path       string   `json:"-"`
}

// Validate normalizes the config in place and rejects anything a run
// cannot start with.
func (c *Config) Validate() error {
	if c.Token == "" {
		return docstore.ErrNoToken
	}

	dir, err := utils.ResolvePath(c.Dir)
	if err != nil {
		return fmt.Errorf("local dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("local dir: %w", err)
	}
	if !info.IsDir() {
		return errors.New("local dir: not a directory")
	}
	c.Dir = dir

	if _, err := docstore.ParseFolderLink(c.FolderLink); err != nil {
		return fmt.Errorf("folder link: %w", err)
	}

	if c.CacheFile == "" {
		c.CacheFile = sync.DefaultCacheFile
	}
	if len(c.Include) == 0 {
		c.Include = sync.DefaultInclude
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Burst < 1 {
		c.Burst = DefaultBurst
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = DefaultMaxRetries
	}

	return nil
}

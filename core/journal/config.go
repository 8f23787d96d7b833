package journal

import (
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned for an unsupported journal backend.
var ErrUnknownBackend = errors.New("unknown journal backend")

// Config defines settings for the dispatch journal.
type Config struct {
	// Backend selects the store: "none", "memory", "jsonl", "rotating" or
	// "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
	// MaxRecords bounds the memory backend.
	MaxRecords int `json:"max_records"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "journal.db"
		case "jsonl", "rotating":
			c.Path = "journal.jsonl"
		}
	}
	if c.Backend == "rotating" && c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.Backend == "memory" && c.MaxRecords <= 0 {
		c.MaxRecords = 10000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "none", "memory":
		return nil
	case "jsonl", "rotating", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("journal path is required for backend %s", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Backend)
	}
}

// Open creates the store selected by cfg.
func Open(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "none":
		return NopStore{}, nil
	case "memory":
		return NewMemoryStore(cfg.MaxRecords), nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	default:
		return NewSQLiteStore(cfg.Path)
	}
}

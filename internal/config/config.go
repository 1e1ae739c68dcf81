// Package config reads the searchable YAML configuration: which database to
// open, where the full-text index lives, and the search settings of each table.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ministore/searchable/searchable"
	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/fulltext"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/storage"
)

var (
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
	// ErrUnknownModel is returned when a table has no models entry.
	ErrUnknownModel = errors.New("unknown model")
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "searchable.yaml"

// Defaults applied when not configured.
const (
	DefaultBackend  = storage.BackendSQLite
	DefaultDSN      = "searchable.db"
	DefaultLogLevel = "info"
)

// Config contains configuration for the searchable CLI.
type Config struct {
	Backend         storage.Backend              `yaml:"backend,omitempty"`
	DSN             string                       `yaml:"dsn,omitempty"`
	PostgresSchema  string                       `yaml:"postgres_schema,omitempty"`
	IndexTable      string                       `yaml:"index_table,omitempty"`
	SortByRelevance *bool                        `yaml:"sort_by_relevance,omitempty"`
	LogLevel        string                       `yaml:"log_level,omitempty"`
	Models          map[string]searchable.Config `yaml:"models,omitempty"`

	// path is the file this config was loaded from; empty when none existed
	path string
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfigFile, "cannot read config file "+path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfigFile, "config file "+path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates YAML config data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configured values. Unset values are valid; defaults are used.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", storage.BackendSQLite, storage.BackendPostgres:
	default:
		return fmt.Errorf("%w: backend must be sqlite or postgres, got %q", ErrInvalidValue, c.Backend)
	}
	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.IndexTable != "" && !storage.ValidIdentifier(c.IndexTable) {
		return fmt.Errorf("%w: index_table %q is not a table name", ErrInvalidValue, c.IndexTable)
	}
	for table, m := range c.Models {
		if !storage.ValidIdentifier(table) {
			return fmt.Errorf("%w: model %q is not a table name", ErrInvalidValue, table)
		}
		for _, j := range m.Joins {
			kind, err := j.JoinKind()
			if err != nil {
				return fmt.Errorf("%w: model %s: %v", ErrInvalidValue, table, err)
			}
			if j.Table == "" || (kind != query.JoinCross && (j.Left == "" || j.Right == "")) {
				return fmt.Errorf("%w: model %s has an incomplete join", ErrInvalidValue, table)
			}
		}
	}
	return nil
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string { return c.path }

func (c *Config) BackendOrDefault() storage.Backend {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

func (c *Config) DSNOrDefault() string {
	if c.DSN == "" && c.BackendOrDefault() == storage.BackendSQLite {
		return DefaultDSN
	}
	return c.DSN
}

func (c *Config) IndexTableOrDefault() string {
	if c.IndexTable == "" {
		return fulltext.DefaultTable
	}
	return c.IndexTable
}

// ShouldSortByRelevance defaults to true.
func (c *Config) ShouldSortByRelevance() bool {
	if c.SortByRelevance == nil {
		return true
	}
	return *c.SortByRelevance
}

func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Model returns the declared settings of table. A table without an entry
// has an empty Config and falls back to its own columns.
func (c *Config) Model(table string) searchable.Config {
	return c.Models[table]
}

// RequireModel is Model that fails for tables without an entry.
func (c *Config) RequireModel(table string) (searchable.Config, error) {
	m, ok := c.Models[table]
	if !ok {
		return searchable.Config{}, fmt.Errorf("%w: %s", ErrUnknownModel, table)
	}
	return m, nil
}

// ModelNames returns the configured tables in sorted order.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseLevel maps debug, info, warn and error to a slog level; empty is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", DefaultLogLevel:
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log_level must be debug, info, warn or error, got %q", ErrInvalidValue, s)
	}
}

package cliutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/config"
	"github.com/ministore/searchable/searchable"
	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/fulltext"
	"github.com/ministore/searchable/searchable/schema"
	"github.com/ministore/searchable/searchable/storage"
	"github.com/ministore/searchable/searchable/storage/postgres"
	"github.com/ministore/searchable/searchable/storage/sqlite"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatIDs    OutputFormat = "ids"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatIDs, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// LoadConfig reads the config file and applies the global flags on top.
func LoadConfig(g cliopt.GlobalOptions) (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.Backend != "" {
		cfg.Backend = storage.Backend(g.Backend)
	}
	if g.DSN != "" {
		cfg.DSN = g.DSN
	}
	if g.PostgresSchema != "" {
		cfg.PostgresSchema = g.PostgresSchema
	}
	if g.IndexTable != "" {
		cfg.IndexTable = g.IndexTable
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, serrors.Wrap(serrors.ErrConfiguration, "flags", err)
	}
	return cfg, nil
}

// NewLogger returns a text logger on w at the configured level.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// CreateAdapter creates the storage adapter for the configured backend.
func CreateAdapter(cfg *config.Config) (storage.Adapter, error) {
	switch cfg.BackendOrDefault() {
	case storage.BackendPostgres:
		if cfg.DSN == "" {
			return nil, serrors.ConfigurationError("postgres backend requires a dsn")
		}
		return postgres.New(cfg.DSN, cfg.PostgresSchema), nil
	default:
		return sqlite.New(cfg.DSNOrDefault()), nil
	}
}

// Env is the opened database and the services built on it.
type Env struct {
	Config  *config.Config
	Adapter storage.Adapter
	DB      *sql.DB
	Columns *schema.Cache
	Logger  *slog.Logger
}

func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Env, error) {
	adapter, err := CreateAdapter(cfg)
	if err != nil {
		return nil, err
	}
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrIO, "connect to database", err)
	}
	return &Env{
		Config:  cfg,
		Adapter: adapter,
		DB:      db,
		Columns: schema.NewCache(schema.DBIntrospector{DB: db, Lister: adapter}),
		Logger:  logger,
	}, nil
}

func (e *Env) Close() error {
	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			return serrors.Wrap(serrors.ErrIO, "close database", err)
		}
	}
	return e.Adapter.Close()
}

// Model returns the searchable model of table with the configured settings.
func (e *Env) Model(table string) (*searchable.Model, error) {
	m, err := searchable.NewModel(table, e.Adapter, e.Columns,
		searchable.WithConfig(e.Config.Model(table)),
		searchable.WithLogger(e.Logger))
	if err != nil {
		return nil, err
	}
	return m.SetSortByRelevance(e.Config.ShouldSortByRelevance()), nil
}

// Store opens the full-text index table, creating it if needed.
func (e *Env) Store(ctx context.Context) (*fulltext.Store, error) {
	opts := fulltext.DefaultOptions()
	opts.Table = e.Config.IndexTableOrDefault()
	opts.Logger = e.Logger
	s, err := fulltext.NewStore(e.Adapter, e.DB, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

package cliopt

import "github.com/spf13/pflag"

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
// Non-empty values override the config file.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	ConfigPath     string
	Backend        string
	DSN            string
	PostgresSchema string
	IndexTable     string
	LogLevel       string

	Format string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{Format: "pretty"}
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVarP(&g.ConfigPath, "config", "c", g.ConfigPath, "config file (default searchable.yaml)")
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")
	fs.StringVar(&g.DSN, "dsn", g.DSN, "sqlite file path or postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema placed first on search_path")
	fs.StringVar(&g.IndexTable, "index-table", g.IndexTable, "full-text index table")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.StringVarP(&g.Format, "format", "f", g.Format, "output format: pretty|ids|json")
}

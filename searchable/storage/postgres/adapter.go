package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/storage"
	"github.com/ministore/searchable/searchable/storage/sqlbuilder"
)

type Adapter struct {
	DSN    string
	Schema string // pinned first on search_path; empty keeps the server default
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderDollar }

func (a *Adapter) Close() error { return nil }

// Like casts so that derived and non-text columns can be compared; LIKE is
// case-sensitive in Postgres, hence ILIKE.
func (a *Adapter) Like(column, pattern string) string {
	return fmt.Sprintf("CAST(%s AS TEXT) ILIKE '%s'", column, pattern)
}

func (a *Adapter) Locate(column string) string {
	return fmt.Sprintf("STRPOS(LOWER(CAST(%s AS TEXT)), LOWER(CAST(? AS TEXT)))", column)
}

func (a *Adapter) IndexSQL(table string) storage.IndexSQL { return indexTemplates(table) }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

func (a *Adapter) ensureSchema(ctx context.Context, db *sql.DB) error {
	if !schemaNameRe.MatchString(a.Schema) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", a.Schema, schemaNameRe.String())
	}
	_, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema))
	return err
}

func openPinged(ctx context.Context, cfg *pgx.ConnConfig) (*sql.DB, error) {
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Connect opens a pool through pgx. With a Schema set, the schema is created
// first on a throwaway pool and then pinned ahead of public on search_path.
func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if a.Schema == "" {
		return openPinged(ctx, cfg)
	}

	bootstrap, err := openPinged(ctx, cfg.Copy())
	if err != nil {
		return nil, err
	}
	err = a.ensureSchema(ctx, bootstrap)
	_ = bootstrap.Close()
	if err != nil {
		return nil, err
	}

	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["search_path"] = quoteIdent(a.Schema) + ",public"
	return openPinged(ctx, cfg)
}

func (a *Adapter) ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	if !storage.ValidIdentifier(table) {
		return nil, serrors.InvalidIdentifierError(table)
	}
	stmt := `SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`
	args := []any{table}
	if schema, name, ok := strings.Cut(table, "."); ok {
		stmt = `SELECT column_name FROM information_schema.columns
		WHERE table_schema = $2 AND table_name = $1
		ORDER BY ordinal_position`
		args = []any{name, schema}
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

var _ storage.Adapter = (*Adapter)(nil)

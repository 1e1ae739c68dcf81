package storage

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/ministore/searchable/searchable/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Dialect renders the backend-specific pieces of a search fragment.
type Dialect interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle

	// Like returns a case-insensitive "column matches pattern" predicate.
	// pattern is embedded as a quoted literal and must not contain quotes.
	Like(column, pattern string) string

	// Locate returns the 1-based, case-insensitive position of the bound
	// needle ('?') inside column, or 0 when it does not occur.
	Locate(column string) string
}

// Adapter abstracts database-specific operations
type Adapter interface {
	Dialect

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// ListColumns returns the column names of table in declaration order.
	ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error)

	IndexSQL(table string) IndexSQL
}

// IndexSQL holds the statements used by the full-text index table.
type IndexSQL struct {
	CreateTable string
	Upsert      string // type, id, title, content, now_ms
	Delete      string // type, id
	Get         string // type, id
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether s is a plain or schema-qualified identifier.
func ValidIdentifier(s string) bool {
	return identRe.MatchString(s)
}

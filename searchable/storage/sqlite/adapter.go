package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/storage"
	"github.com/ministore/searchable/searchable/storage/sqlbuilder"
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DefaultDriver}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend {
	return storage.BackendSQLite
}

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

// Like relies on SQLite LIKE being case-insensitive for ASCII.
func (a *Adapter) Like(column, pattern string) string {
	return fmt.Sprintf("%s LIKE '%s'", column, pattern)
}

func (a *Adapter) Locate(column string) string {
	return fmt.Sprintf("INSTR(LOWER(%s), LOWER(?))", column)
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dsn appends busy timeout, WAL journaling and foreign key settings in the
// syntax of the driver in use. WAL lets a batch commit while another
// connection still reads from the source table.
func (a *Adapter) dsn() string {
	params := "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	if a.DriverName == "sqlite3" {
		params = "_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"
	}
	if strings.Contains(a.Path, "?") {
		return a.Path + "&" + params
	}
	return a.Path + "?" + params
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	if !storage.ValidIdentifier(table) {
		return nil, serrors.InvalidIdentifierError(table)
	}
	stmt := "SELECT name FROM pragma_table_info(?1) ORDER BY cid"
	args := []any{table}
	if schema, name, ok := strings.Cut(table, "."); ok {
		stmt = "SELECT name FROM pragma_table_info(?1, ?2) ORDER BY cid"
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

func (a *Adapter) IndexSQL(table string) storage.IndexSQL {
	return indexTemplates(table)
}

var (
	_ storage.Adapter = (*Adapter)(nil)
)

// Package query holds the SQL query object that search fragments are applied to.
//
// Query is the narrow surface the search layer depends on; Builder is the
// concrete implementation that renders SQL for a backend placeholder style.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/storage/sqlbuilder"
)

// JoinKind is the SQL join keyword used by Join.
type JoinKind string

const (
	JoinLeft  JoinKind = "LEFT JOIN"
	JoinInner JoinKind = "INNER JOIN"
	JoinRight JoinKind = "RIGHT JOIN"
	JoinCross JoinKind = "CROSS JOIN"
)

// ParseJoinKind maps "left", "inner", "right", "leftJoin", ... to a JoinKind.
// Empty input yields JoinLeft.
func ParseJoinKind(s string) (JoinKind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimSuffix(strings.TrimSuffix(k, "join"), " ")
	switch k {
	case "", "left":
		return JoinLeft, nil
	case "inner":
		return JoinInner, nil
	case "right":
		return JoinRight, nil
	case "cross":
		return JoinCross, nil
	default:
		return "", fmt.Errorf("unknown join kind %q", s)
	}
}

// Query is the set of query operations the search layer uses.
type Query interface {
	Table() string
	Columns() []string
	Select(columns ...string)
	WhereRaw(sql string, args ...any)
	HavingRaw(sql string, args ...any)
	Join(kind JoinKind, table, left, right string)
	OrderByRaw(expr string, args ...any)
	PrependOrderByRaw(expr string, args ...any)
}

// Fragment is a raw SQL piece with '?' placeholders and its arguments.
type Fragment struct {
	SQL  string
	Args []any
}

type join struct {
	kind  JoinKind
	table string
	left  string
	right string
}

// Builder is a mutable SELECT statement.
type Builder struct {
	style   sqlbuilder.PlaceholderStyle
	table   string
	columns []string
	joins   []join
	where   []Fragment
	groupBy []string
	having  []Fragment
	orderBy []Fragment
	limit   int
	offset  int
}

var _ Query = (*Builder)(nil)

// New creates a builder selecting from table.
func New(table string, style sqlbuilder.PlaceholderStyle) *Builder {
	return &Builder{style: style, table: table}
}

func (b *Builder) Table() string { return b.table }

// Columns returns the current select list; nil when nothing was selected yet.
func (b *Builder) Columns() []string {
	if len(b.columns) == 0 {
		return nil
	}
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// Select replaces the select list.
func (b *Builder) Select(columns ...string) {
	b.columns = append([]string(nil), columns...)
}

// AddSelect appends to the select list.
func (b *Builder) AddSelect(columns ...string) {
	b.columns = append(b.columns, columns...)
}

func (b *Builder) WhereRaw(sql string, args ...any) {
	b.where = append(b.where, Fragment{SQL: sql, Args: args})
}

func (b *Builder) HavingRaw(sql string, args ...any) {
	b.having = append(b.having, Fragment{SQL: sql, Args: args})
}

func (b *Builder) Join(kind JoinKind, table, left, right string) {
	b.joins = append(b.joins, join{kind: kind, table: table, left: left, right: right})
}

func (b *Builder) GroupBy(columns ...string) {
	b.groupBy = append(b.groupBy, columns...)
}

// OrderBy appends "column dir"; dir other than DESC is treated as ASC.
func (b *Builder) OrderBy(column, dir string) {
	d := "ASC"
	if strings.EqualFold(dir, "desc") {
		d = "DESC"
	}
	b.orderBy = append(b.orderBy, Fragment{SQL: column + " " + d})
}

func (b *Builder) OrderByRaw(expr string, args ...any) {
	b.orderBy = append(b.orderBy, Fragment{SQL: expr, Args: args})
}

// PrependOrderByRaw places expr ahead of every ordering added so far.
func (b *Builder) PrependOrderByRaw(expr string, args ...any) {
	b.orderBy = append([]Fragment{{SQL: expr, Args: args}}, b.orderBy...)
}

func (b *Builder) Limit(n int)  { b.limit = n }
func (b *Builder) Offset(n int) { b.offset = n }

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.joins = append([]join(nil), b.joins...)
	c.where = append([]Fragment(nil), b.where...)
	c.groupBy = append([]string(nil), b.groupBy...)
	c.having = append([]Fragment(nil), b.having...)
	c.orderBy = append([]Fragment(nil), b.orderBy...)
	return &c
}

// ToSQL renders the statement and its arguments in placeholder order.
func (b *Builder) ToSQL() (string, []any, error) {
	if b.table == "" {
		return "", nil, serrors.ConfigurationError("query has no table")
	}
	pb := sqlbuilder.New(b.style)
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(string(j.kind))
		sb.WriteString(" ")
		sb.WriteString(j.table)
		if j.kind != JoinCross {
			fmt.Fprintf(&sb, " ON %s = %s", j.left, j.right)
		}
	}

	if err := writeFragments(&sb, pb, " WHERE ", " AND ", b.where); err != nil {
		return "", nil, err
	}
	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if err := writeFragments(&sb, pb, " HAVING ", " AND ", b.having); err != nil {
		return "", nil, err
	}
	if err := writeFragments(&sb, pb, " ORDER BY ", ", ", b.orderBy); err != nil {
		return "", nil, err
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(b.offset))
	}
	return sb.String(), pb.Args(), nil
}

func writeFragments(sb *strings.Builder, pb *sqlbuilder.Builder, keyword, sep string, frags []Fragment) error {
	if len(frags) == 0 {
		return nil
	}
	sb.WriteString(keyword)
	for i, f := range frags {
		if i > 0 {
			sb.WriteString(sep)
		}
		s, err := pb.Rebind(f.SQL, f.Args)
		if err != nil {
			return serrors.Wrap(serrors.ErrSQL, "render fragment", err)
		}
		sb.WriteString(s)
	}
	return nil
}

// Queryer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Rows renders the builder and runs it on db.
func (b *Builder) Rows(ctx context.Context, db Queryer) (*sql.Rows, error) {
	stmt, args, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "execute query", err)
	}
	return rows, nil
}

// ScanMaps runs the builder and returns every row as a column-name keyed map.
// []byte values are converted to string.
func (b *Builder) ScanMaps(ctx context.Context, db Queryer) ([]map[string]any, error) {
	rows, err := b.Rows(ctx, db)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "read columns", err)
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, serrors.Wrap(serrors.ErrSQL, "scan row", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if bs, ok := vals[i].([]byte); ok {
				row[c] = string(bs)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "iterate rows", err)
	}
	return out, nil
}

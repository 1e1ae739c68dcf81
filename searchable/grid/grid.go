package grid

import (
	"github.com/ministore/searchable/searchable/query"

	serrors "github.com/ministore/searchable/searchable/errors"
)

// MakeSelect turns a column map into a select list: positional expressions
// pass through, keyed ones become "expr AS key".
func MakeSelect(columns ColumnMap) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.Key == "" {
			out = append(out, c.Expr)
		} else {
			out = append(out, c.Expr+" AS "+c.Key)
		}
	}
	return out
}

// InitFunc builds the base query of a grid: its table, joins and fixed conditions.
type InitFunc func() (query.Query, error)

// Grid is a reusable report definition: a column map plus a lazily built query.
type Grid struct {
	columns ColumnMap
	init    InitFunc
	query   query.Query
}

func New(columns ColumnMap, init InitFunc) *Grid {
	return &Grid{columns: columns, init: init}
}

func (g *Grid) Columns() ColumnMap { return g.columns }

func (g *Grid) SetColumns(columns ColumnMap) { g.columns = columns }

// Query returns the grid's query, building it on first use.
func (g *Grid) Query() (query.Query, error) {
	if g.query != nil {
		return g.query, nil
	}
	if g.init == nil {
		return nil, serrors.ConfigurationError("grid has no query and no initializer")
	}
	q, err := g.init()
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, serrors.ConfigurationError("grid initializer returned no query")
	}
	g.query = q
	return q, nil
}

func (g *Grid) SetQuery(q query.Query) { g.query = q }

// SelectColumns applies the grid's select list to its query.
func (g *Grid) SelectColumns() (query.Query, error) {
	q, err := g.Query()
	if err != nil {
		return nil, err
	}
	q.Select(MakeSelect(g.columns)...)
	return q, nil
}

// MakeQuery returns the final query of the grid.
func (g *Grid) MakeQuery() (query.Query, error) {
	return g.SelectColumns()
}

// SetSelectQuery applies the grid's select list to another query.
func (g *Grid) SetSelectQuery(q query.Query) query.Query {
	q.Select(MakeSelect(g.columns)...)
	return q
}

// Column resolves a key against the grid's columns.
func (g *Grid) Column(key string) (string, error) {
	return g.columns.Resolve(key)
}

func (g *Grid) ColumnsFor(keys []string) ([]string, error) {
	return g.columns.ResolveMany(keys)
}

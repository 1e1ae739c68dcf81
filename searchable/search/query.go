package search

import (
	"log/slog"

	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/storage"
)

// SearchQuery is a searchable grid: a static column map and base query with
// no model behind it. Each Search call builds a fresh Sublime bound to the
// grid's query.
type SearchQuery struct {
	*grid.Grid

	dialect     storage.Dialect
	operator    Operator
	sort        bool
	sortColumns grid.ColumnMap
	searchStr   string
	logger      *slog.Logger
}

func NewSearchQuery(g *grid.Grid, d storage.Dialect) *SearchQuery {
	return &SearchQuery{Grid: g, dialect: d, operator: Where, sort: true, logger: slog.Default()}
}

func (sq *SearchQuery) SetOperator(op Operator) *SearchQuery {
	sq.operator = op
	return sq
}

func (sq *SearchQuery) SortByRelevance(sort bool) *SearchQuery {
	sq.sort = sort
	return sq
}

func (sq *SearchQuery) ShouldSortByRelevance() bool { return sq.sort }

// SetSortColumns ranks by columns other than the grid's.
func (sq *SearchQuery) SetSortColumns(cols grid.ColumnMap) *SearchQuery {
	sq.sortColumns = cols
	return sq
}

func (sq *SearchQuery) SetLogger(l *slog.Logger) *SearchQuery {
	sq.logger = l
	return sq
}

func (sq *SearchQuery) SearchString() string { return sq.searchStr }

// Searcher returns a searcher bound to the grid's query.
func (sq *SearchQuery) Searcher() (*Sublime, error) {
	q, err := sq.Query()
	if err != nil {
		return nil, err
	}
	opts := []Option{WithLogger(sq.logger)}
	if sq.sortColumns != nil {
		opts = append(opts, WithSortColumns(sq.sortColumns))
	}
	return NewSublime(q, sq.dialect, sq.Columns(), sq.sort, sq.operator, opts...), nil
}

func (sq *SearchQuery) Search(searchStr string) (query.Query, error) {
	s, err := sq.Searcher()
	if err != nil {
		return nil, err
	}
	sq.searchStr = searchStr
	return s.Search(searchStr)
}

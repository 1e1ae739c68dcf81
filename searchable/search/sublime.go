// Package search builds fuzzy LIKE filters and relevance ordering for queries.
package search

import (
	"fmt"
	"log/slog"
	"strings"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/storage"
)

// Operator selects the clause a search is applied to.
type Operator string

const (
	// Where compares the raw column expressions in WHERE.
	Where Operator = "where"
	// Having compares the output names of the columns in HAVING, so aliases of
	// derived columns can be searched.
	Having Operator = "having"
)

func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToLower(strings.TrimSpace(s))) {
	case "", Where:
		return Where, nil
	case Having:
		return Having, nil
	default:
		return "", fmt.Errorf("unknown search operator %q", s)
	}
}

type Option func(*Sublime)

func WithLogger(l *slog.Logger) Option {
	return func(s *Sublime) { s.logger = l }
}

// WithSortColumns ranks by columns other than the searched ones.
func WithSortColumns(cols grid.ColumnMap) Option {
	return func(s *Sublime) { s.sortColumns = cols }
}

// Sublime applies a search resembling the ctrl+p file search of code editors:
// every letter and digit of the input must appear in order in one of the
// searched columns.
type Sublime struct {
	query       query.Query
	dialect     storage.Dialect
	columns     grid.ColumnMap
	sortColumns grid.ColumnMap
	sort        bool
	operator    Operator
	searchStr   string
	logger      *slog.Logger
}

func NewSublime(q query.Query, d storage.Dialect, columns grid.ColumnMap, sort bool, op Operator, opts ...Option) *Sublime {
	s := &Sublime{
		query:    q,
		dialect:  d,
		columns:  columns,
		sort:     sort,
		operator: op,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sublime) Query() query.Query { return s.query }

func (s *Sublime) SetQuery(q query.Query) *Sublime {
	s.query = q
	return s
}

func (s *Sublime) Columns() grid.ColumnMap { return s.columns }

func (s *Sublime) SetColumns(cols grid.ColumnMap) *Sublime {
	s.columns = cols
	return s
}

// SortColumns returns the columns ranked by relevance; the searched columns
// unless overridden.
func (s *Sublime) SortColumns() grid.ColumnMap {
	if s.sortColumns != nil {
		return s.sortColumns
	}
	return s.columns
}

func (s *Sublime) SetSortColumns(cols grid.ColumnMap) *Sublime {
	s.sortColumns = cols
	return s
}

func (s *Sublime) Operator() Operator { return s.operator }

func (s *Sublime) SetOperator(op Operator) *Sublime {
	s.operator = op
	return s
}

func (s *Sublime) SortByRelevance(sort bool) *Sublime {
	s.sort = sort
	return s
}

func (s *Sublime) ShouldSortByRelevance() bool { return s.sort }

// SearchString is the raw input of the last Search call.
func (s *Sublime) SearchString() string { return s.searchStr }

// ColumnKeys returns the output names of the columns.
func (s *Sublime) ColumnKeys() []string { return s.columns.Keys() }

// ColumnsToCompare returns the expressions for Where and the output names for Having.
func (s *Sublime) ColumnsToCompare() []string {
	if s.operator == Having {
		return s.columns.Keys()
	}
	return s.columns.Exprs()
}

// Column resolves key against the columns being compared.
func (s *Sublime) Column(key string) (string, error) {
	return grid.Columns(s.ColumnsToCompare()...).Resolve(key)
}

// Search adds the fuzzy filter for searchStr to the query and, when enabled,
// the relevance ordering. With no columns to compare the query is returned
// untouched.
func (s *Sublime) Search(searchStr string) (query.Query, error) {
	if s.query == nil {
		return nil, serrors.ConfigurationError("query not set")
	}
	if s.dialect == nil {
		return nil, serrors.ConfigurationError("dialect not set")
	}

	compare := s.ColumnsToCompare()
	if len(compare) == 0 {
		return s.query, nil
	}
	if s.sort && len(s.SortColumns()) == 0 {
		return nil, serrors.ConfigurationError("relevance sort requires sort columns")
	}

	s.searchStr = searchStr
	pattern := Parse(searchStr)

	conditions := make([]string, 0, len(compare))
	for _, col := range compare {
		conditions = append(conditions, s.dialect.Like(col, pattern))
	}
	clause := "(" + strings.Join(conditions, " OR ") + ")"

	if s.operator == Having {
		s.query.HavingRaw(clause)
	} else {
		s.query.WhereRaw(clause)
	}
	s.logger.Debug("search filter applied",
		"table", s.query.Table(), "operator", string(s.operator), "clause", clause)

	if s.sort {
		if err := s.ApplySortByRelevance(); err != nil {
			return nil, err
		}
	}
	return s.query, nil
}

// ApplySortByRelevance orders the query by the last search string.
func (s *Sublime) ApplySortByRelevance() error {
	return ApplyRelevanceOrder(s.query, s.dialect, s.SortColumns().Exprs(), s.searchStr)
}

package searchable

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/schema"
	"github.com/ministore/searchable/searchable/search"
	"github.com/ministore/searchable/searchable/storage"
)

type Option func(*Model)

// WithConfig declares the model's columns, sortable columns and joins.
func WithConfig(cfg Config) Option {
	return func(m *Model) { m.declared = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithDefaultSearchQuery replaces the searcher built on first use.
func WithDefaultSearchQuery(fn func(*Model) (*search.Sublime, error)) Option {
	return func(m *Model) { m.defaultSearchQuery = fn }
}

// Model is the search behaviour of one table. A Model is not safe for
// concurrent use; the column cache it reads from is.
type Model struct {
	table   string
	dialect storage.Dialect
	cache   schema.ColumnCache
	logger  *slog.Logger

	declared Config

	// overrides win over declared; nil means not set
	columns  grid.ColumnMap
	sortable grid.ColumnMap
	joins    Joins

	enabled bool
	sort    bool

	searcher           *search.Sublime
	customSearcher     bool
	defaultSearchQuery func(*Model) (*search.Sublime, error)
}

// NewModel returns a model for table. cache may be nil when every column set
// is declared; it is only consulted for the physical columns of the table.
func NewModel(table string, d storage.Dialect, cache schema.ColumnCache, opts ...Option) (*Model, error) {
	if !storage.ValidIdentifier(table) {
		return nil, serrors.InvalidIdentifierError(table)
	}
	if d == nil {
		return nil, serrors.ConfigurationError("model requires a dialect")
	}
	m := &Model{
		table:   table,
		dialect: d,
		cache:   cache,
		logger:  slog.Default(),
		enabled: true,
		sort:    true,
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

func (m *Model) Table() string { return m.table }

func (m *Model) Dialect() storage.Dialect { return m.dialect }

// TableColumns returns the physical columns of the table.
func (m *Model) TableColumns(ctx context.Context) ([]string, error) {
	if m.cache == nil {
		return nil, serrors.ConfigurationError("no column cache for table " + m.table)
	}
	return m.cache.Columns(ctx, m.table)
}

func (m *Model) tableColumnMap(ctx context.Context) (grid.ColumnMap, error) {
	cols, err := m.TableColumns(ctx)
	if err != nil {
		return nil, err
	}
	return grid.Columns(cols...), nil
}

// SearchableColumns returns a copy of the override, else of the declared
// columns, else the table's columns.
func (m *Model) SearchableColumns(ctx context.Context) (grid.ColumnMap, error) {
	if m.columns != nil {
		return m.columns.Clone(), nil
	}
	if m.declared.Columns != nil {
		return m.declared.Columns.Clone(), nil
	}
	return m.tableColumnMap(ctx)
}

// SortableColumns follows the same precedence as SearchableColumns.
func (m *Model) SortableColumns(ctx context.Context) (grid.ColumnMap, error) {
	if m.sortable != nil {
		return m.sortable.Clone(), nil
	}
	if m.declared.SortableColumns != nil {
		return m.declared.SortableColumns.Clone(), nil
	}
	return m.tableColumnMap(ctx)
}

func (m *Model) SearchableJoins() Joins {
	if m.joins != nil {
		return m.joins
	}
	return m.declared.Joins
}

func (m *Model) allColumns(ctx context.Context) (grid.ColumnMap, error) {
	cols, err := m.SearchableColumns(ctx)
	if err != nil {
		return nil, err
	}
	sortable, err := m.SortableColumns(ctx)
	if err != nil {
		return nil, err
	}
	return cols.Merge(sortable), nil
}

// IsColumnValid reports whether column names a searchable or sortable column
// (by key or expression) or a physical column of the table. Use it to vet
// user-supplied names before putting them in ORDER BY or a filter.
func (m *Model) IsColumnValid(ctx context.Context, column string) (bool, error) {
	all, err := m.allColumns(ctx)
	if err != nil {
		return false, err
	}
	if all.HasKey(column) || all.Contains(column) {
		return true, nil
	}
	if m.cache == nil {
		return false, nil
	}
	physical, err := m.TableColumns(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(physical, column), nil
}

// SortableColumn resolves column against the searchable and sortable columns.
func (m *Model) SortableColumn(ctx context.Context, column string) (string, error) {
	all, err := m.allColumns(ctx)
	if err != nil {
		return "", err
	}
	return all.Resolve(column)
}

// SearchQuery returns the model's searcher, building it on first use.
func (m *Model) SearchQuery(ctx context.Context) (*search.Sublime, error) {
	if m.searcher != nil {
		return m.searcher, nil
	}
	if m.defaultSearchQuery != nil {
		s, err := m.defaultSearchQuery(m)
		if err != nil {
			return nil, err
		}
		m.searcher, m.customSearcher = s, true
		return s, nil
	}
	cols, err := m.SearchableColumns(ctx)
	if err != nil {
		return nil, err
	}
	m.searcher = search.NewSublime(nil, m.dialect, cols, m.sort, search.Where, search.WithLogger(m.logger))
	return m.searcher, nil
}

// SetSearchQuery installs a searcher; it is kept when columns change.
func (m *Model) SetSearchQuery(s *search.Sublime) *Model {
	m.searcher = s
	m.customSearcher = s != nil
	return m
}

// columnsChanged drops a searcher built from the previous columns.
func (m *Model) columnsChanged() {
	if !m.customSearcher {
		m.searcher = nil
	}
}

func (m *Model) EnableSearchable() *Model {
	m.enabled = true
	return m
}

func (m *Model) DisableSearchable() *Model {
	m.enabled = false
	return m
}

func (m *Model) SearchableEnabled() bool { return m.enabled }

// SetSortByRelevance also updates an already built searcher.
func (m *Model) SetSortByRelevance(sort bool) *Model {
	m.sort = sort
	if m.searcher != nil {
		m.searcher.SortByRelevance(sort)
	}
	return m
}

func (m *Model) ShouldSortByRelevance() bool { return m.sort }

// SetSearchable overrides all three column sets. A nil field in cfg becomes
// an empty override, not a fallback.
func (m *Model) SetSearchable(cfg Config) *Model {
	m.SetSearchableColumns(cfg.Columns)
	m.SetSortableColumns(cfg.SortableColumns)
	m.SetSearchableJoins(cfg.Joins)
	return m
}

func (m *Model) SetSearchableColumns(cols grid.ColumnMap) *Model {
	m.columns = nonNil(cols)
	m.columnsChanged()
	return m
}

func (m *Model) SetSortableColumns(cols grid.ColumnMap) *Model {
	m.sortable = nonNil(cols)
	return m
}

func (m *Model) SetSearchableJoins(joins Joins) *Model {
	if joins == nil {
		joins = Joins{}
	}
	m.joins = joins
	return m
}

// AddSearchable merges the non-empty fields of cfg into the current sets.
func (m *Model) AddSearchable(cfg Config) *Model {
	if len(cfg.Columns) > 0 {
		m.AddSearchableColumns(cfg.Columns)
	}
	if len(cfg.Joins) > 0 {
		m.AddSearchableJoins(cfg.Joins)
	}
	if len(cfg.SortableColumns) > 0 {
		m.AddSortableColumns(cfg.SortableColumns)
	}
	return m
}

// AddSearchableColumns merges into the override when one is set, else into
// the declared columns.
func (m *Model) AddSearchableColumns(cols grid.ColumnMap) *Model {
	if m.columns != nil {
		m.columns = m.columns.Merge(cols)
	} else {
		m.declared.Columns = m.declared.Columns.Merge(cols)
	}
	m.columnsChanged()
	return m
}

func (m *Model) AddSortableColumns(cols grid.ColumnMap) *Model {
	if m.sortable != nil {
		m.sortable = m.sortable.Merge(cols)
	} else {
		m.declared.SortableColumns = m.declared.SortableColumns.Merge(cols)
	}
	return m
}

func (m *Model) AddSearchableJoins(joins Joins) *Model {
	if m.joins != nil {
		m.joins = m.joins.Merge(joins)
	} else {
		m.declared.Joins = m.declared.Joins.Merge(joins)
	}
	return m
}

// ApplySearch joins the searchable joins into q, selects "table.*" when q
// selects nothing yet, and adds the search filter. A disabled model leaves q
// untouched.
func (m *Model) ApplySearch(ctx context.Context, q query.Query, searchStr string) (query.Query, error) {
	if q == nil {
		return nil, serrors.ConfigurationError("query not set")
	}
	if !m.enabled {
		return q, nil
	}
	s, err := m.SearchQuery(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.SearchableJoins().Apply(q); err != nil {
		return nil, serrors.Wrap(serrors.ErrConfiguration, "searchable joins of "+m.table, err)
	}
	if len(q.Columns()) == 0 {
		q.Select(tableRef(q.Table()) + ".*")
	}
	return s.SetQuery(q).Search(searchStr)
}

// tableRef returns the alias of "table alias" and "table AS alias", else table.
func tableRef(from string) string {
	fields := strings.Fields(from)
	if len(fields) == 0 {
		return from
	}
	return fields[len(fields)-1]
}

func nonNil(cols grid.ColumnMap) grid.ColumnMap {
	if cols == nil {
		return grid.ColumnMap{}
	}
	return cols
}

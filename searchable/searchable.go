// Package searchable attaches fuzzy search to a table.
//
// A Model describes one table: which columns are searched, which may be used
// for ordering, and which tables must be joined first. ApplySearch adds the
// filter and relevance ordering to a caller-owned query:
//
//	posts, _ := searchable.NewModel("posts", adapter, cache,
//		searchable.WithConfig(searchable.Config{
//			Columns: grid.NewColumnMap(grid.Positional("posts.title"), grid.Aliased("author", "users.name")),
//			Joins:   searchable.Joins{{Table: "users", Left: "users.id", Right: "posts.user_id"}},
//		}))
//	q := query.New("posts", adapter.PlaceholderStyle())
//	_, err := posts.ApplySearch(ctx, q, "c-p")
package searchable

import (
	"context"

	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
)

// Searchable is implemented by any entity that can filter a query by a search string.
type Searchable interface {
	SearchableColumns(ctx context.Context) (grid.ColumnMap, error)
	SortableColumns(ctx context.Context) (grid.ColumnMap, error)
	SearchableJoins() Joins
	ApplySearch(ctx context.Context, q query.Query, searchStr string) (query.Query, error)
}

// Config is the declared search configuration of a table. A nil field is
// not declared and falls back to the table's columns (or no joins).
type Config struct {
	Columns         grid.ColumnMap `yaml:"columns,omitempty"`
	SortableColumns grid.ColumnMap `yaml:"sortable_columns,omitempty"`
	Joins           Joins          `yaml:"joins,omitempty"`
}

var _ Searchable = (*Model)(nil)

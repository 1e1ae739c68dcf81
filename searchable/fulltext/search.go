package fulltext

import (
	"context"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/search"
)

// Search runs fuzzy searches over the index table. Matches in the title
// rank above matches only in the content.
type Search struct {
	store *Store
}

func NewSearch(store *Store) *Search {
	return &Search{store: store}
}

func (s *Search) columns() grid.ColumnMap {
	t := s.store.table
	return grid.Columns(t+".indexed_title", t+".indexed_content")
}

// SearchQuery returns the query selecting index rows that match searchStr,
// ordered by relevance and then by most recent update.
func (s *Search) SearchQuery(searchStr string) (*query.Builder, error) {
	d := s.store.Dialect()
	q := query.New(s.store.table, d.PlaceholderStyle())
	cols := make([]string, 0, len(recordColumns))
	for _, c := range recordColumns {
		cols = append(cols, s.store.table+"."+c)
	}
	q.Select(cols...)
	q.OrderBy(s.store.table+".updated_at", "desc")

	sub := search.NewSublime(q, d, s.columns(), true, search.Where, search.WithLogger(s.store.logger))
	if _, err := sub.Search(searchStr); err != nil {
		return nil, err
	}
	return q, nil
}

// Run returns up to limit matching rows of every type; limit <= 0 means no limit.
func (s *Search) Run(ctx context.Context, searchStr string, limit int) ([]IndexedRecord, error) {
	q, err := s.SearchQuery(searchStr)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, q, limit)
}

// RunForType is Run restricted to one indexable type.
func (s *Search) RunForType(ctx context.Context, searchStr, typ string, limit int) ([]IndexedRecord, error) {
	q, err := s.SearchQuery(searchStr)
	if err != nil {
		return nil, err
	}
	q.WhereRaw(s.store.table+".indexable_type = ?", typ)
	return s.collect(ctx, q, limit)
}

func (s *Search) collect(ctx context.Context, q *query.Builder, limit int) ([]IndexedRecord, error) {
	if limit > 0 {
		q.Limit(limit)
	}
	rows, err := q.Rows(ctx, s.store.db)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrSQL, "scan indexed record", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "iterate indexed records", err)
	}
	return out, nil
}

package searchable_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministore/searchable/searchable"
	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/schema"
	"github.com/ministore/searchable/searchable/storage/sqlite"
)

func openBlog(t *testing.T) (*sqlite.Adapter, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	a := sqlite.New(filepath.Join(t.TempDir(), "blog.db"))
	db, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, title TEXT NOT NULL, body TEXT NOT NULL)`,
		`INSERT INTO users(id, name) VALUES (1, 'Ann Lee'), (2, 'Bob Stone')`,
		`INSERT INTO posts(id, user_id, title, body) VALUES
			(1, 1, 'Recap', 'nothing'),
			(2, 2, 'Other', 'capital'),
			(3, 2, 'Cap table', 'x'),
			(4, 1, 'zzz', 'zzz')`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	return a, db
}

func ids(t *testing.T, rows []map[string]any) []int64 {
	t.Helper()
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		id, ok := r["id"].(int64)
		require.True(t, ok, "id has type %T", r["id"])
		out = append(out, id)
	}
	return out
}

func postsModel(t *testing.T, a *sqlite.Adapter, db *sql.DB, opts ...searchable.Option) *searchable.Model {
	t.Helper()
	cache := schema.NewCache(schema.DBIntrospector{DB: db, Lister: a})
	m, err := searchable.NewModel("posts", a, cache, opts...)
	require.NoError(t, err)
	return m
}

func TestRelevanceOrdering_SQLite(t *testing.T) {
	a, db := openBlog(t)
	ctx := context.Background()
	m := postsModel(t, a, db, searchable.WithConfig(searchable.Config{
		Columns: grid.Columns("posts.title", "posts.body"),
	}))

	q := query.New("posts", a.PlaceholderStyle())
	q.OrderBy("posts.id", "desc")
	_, err := m.ApplySearch(ctx, q, "cap")
	require.NoError(t, err)
	rows, err := q.ScanMaps(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids(t, rows))

	m.SetSortByRelevance(false)
	q = query.New("posts", a.PlaceholderStyle())
	q.OrderBy("posts.id", "desc")
	_, err = m.ApplySearch(ctx, q, "cap")
	require.NoError(t, err)
	rows, err = q.ScanMaps(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(t, rows))
}

func TestFuzzyMatchIgnoresPunctuationAndCase_SQLite(t *testing.T) {
	a, db := openBlog(t)
	ctx := context.Background()
	m := postsModel(t, a, db, searchable.WithConfig(searchable.Config{
		Columns: grid.Columns("posts.title"),
	}))
	m.SetSortByRelevance(false)

	q := query.New("posts", a.PlaceholderStyle())
	q.OrderBy("posts.id", "asc")
	_, err := m.ApplySearch(ctx, q, "C-T!")
	require.NoError(t, err)
	rows, err := q.ScanMaps(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(t, rows))

	q = query.New("posts", a.PlaceholderStyle())
	q.OrderBy("posts.id", "asc")
	_, err = m.ApplySearch(ctx, q, "")
	require.NoError(t, err)
	rows, err = q.ScanMaps(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(t, rows), "an empty search matches everything")
}

func TestJoinedColumnSearch_SQLite(t *testing.T) {
	a, db := openBlog(t)
	ctx := context.Background()
	m := postsModel(t, a, db, searchable.WithConfig(searchable.Config{
		Columns: grid.NewColumnMap(grid.Positional("posts.title"), grid.Aliased("author", "users.name")),
		Joins:   searchable.Joins{{Table: "users", Left: "users.id", Right: "posts.user_id"}},
	}))

	q := query.New("posts", a.PlaceholderStyle())
	q.OrderBy("posts.id", "asc")
	_, err := m.ApplySearch(ctx, q, "ann")
	require.NoError(t, err)
	rows, err := q.ScanMaps(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(t, rows))
	for _, r := range rows {
		assert.NotContains(t, r, "name", "joined columns stay out of the result")
	}
}

func TestTableColumnFallback_SQLite(t *testing.T) {
	a, db := openBlog(t)
	ctx := context.Background()
	m := postsModel(t, a, db)

	cols, err := m.SearchableColumns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "user_id", "title", "body"}, cols.Exprs())

	q := query.New("posts", a.PlaceholderStyle())
	_, err = m.ApplySearch(ctx, q, "zzz")
	require.NoError(t, err)
	rows, err := q.ScanMaps(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(t, rows))

	ok, err := m.IsColumnValid(ctx, "body")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.IsColumnValid(ctx, "body; --")
	require.NoError(t, err)
	assert.False(t, ok)
}

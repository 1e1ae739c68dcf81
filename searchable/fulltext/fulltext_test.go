package fulltext

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/storage/sqlite"
)

func monotonicNow(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

var epoch = time.Unix(1700000000, 0)

func newStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	a := sqlite.New(filepath.Join(t.TempDir(), "fulltext.db"))
	db, err := a.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts := DefaultOptions()
	opts.Now = monotonicNow(epoch)
	s, err := NewStore(a, db, opts)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx), "migrate is idempotent")
	return s, db
}

func TestNewStoreRejectsBadTable(t *testing.T) {
	_, err := NewStore(sqlite.New(":memory:"), nil, Options{Table: "x; DROP TABLE y"})
	assert.True(t, serrors.IsKind(err, serrors.ErrInvalidIdentifier))
}

func TestUpsertGetDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	doc := Document{Type: "posts", ID: 7, Title: "Cap table", Content: "how to read one"}
	require.NoError(t, s.Upsert(ctx, doc))

	rec, err := s.Get(ctx, "posts", 7)
	require.NoError(t, err)
	assert.Equal(t, "Cap table", rec.IndexedTitle)
	assert.Equal(t, "how to read one", rec.IndexedContent)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Equal(t, epoch.Add(time.Millisecond).UnixMilli(), rec.CreatedAt.UnixMilli())

	doc.Title = "Cap tables"
	require.NoError(t, s.Upsert(ctx, doc))
	again, err := s.Get(ctx, "posts", 7)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID, "upsert keeps the row")
	assert.Equal(t, "Cap tables", again.IndexedTitle)
	assert.Equal(t, rec.CreatedAt, again.CreatedAt)
	assert.True(t, again.UpdatedAt.After(rec.UpdatedAt))

	existed, err := s.Delete(ctx, "posts", 7)
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = s.Delete(ctx, "posts", 7)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = s.Get(ctx, "posts", 7)
	assert.True(t, serrors.IsKind(err, serrors.ErrNotFound))
}

func TestSameIDDifferentTypes(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, Document{Type: "posts", ID: 1, Title: "post"}))
	require.NoError(t, s.Upsert(ctx, Document{Type: "users", ID: 1, Title: "user"}))

	p, err := s.Get(ctx, "posts", 1)
	require.NoError(t, err)
	u, err := s.Get(ctx, "users", 1)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, u.ID)
}

func TestIndexerAndSearch(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	ix := NewIndexer(s)

	docs := []Document{
		{Type: "posts", ID: 1, Title: "Recap", Content: "nothing"},
		{Type: "posts", ID: 2, Title: "Other", Content: "capital"},
		{Type: "pages", ID: 3, Title: "Cap table", Content: "x"},
		{Type: "pages", ID: 4, Title: "zzz", Content: "zzz"},
	}
	for _, d := range docs {
		require.NoError(t, ix.IndexModel(ctx, d))
	}

	srch := NewSearch(s)
	recs, err := srch.Run(ctx, "cap", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, indexableIDs(recs))

	recs, err = srch.Run(ctx, "cap", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, indexableIDs(recs))

	recs, err = srch.RunForType(ctx, "cap", "posts", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, indexableIDs(recs))

	require.NoError(t, ix.UnindexModel(ctx, docs[0]))
	require.NoError(t, ix.UnindexModel(ctx, docs[0]))
	recs, err = srch.Run(ctx, "cap", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, indexableIDs(recs))
}

func TestSearchQuerySQL(t *testing.T) {
	s, _ := newStore(t)
	q, err := NewSearch(s).SearchQuery("ab")
	require.NoError(t, err)
	stmt, args, err := q.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, stmt, "WHERE (fulltext_index.indexed_title LIKE '%a%b%' OR fulltext_index.indexed_content LIKE '%a%b%')")
	assert.Contains(t, stmt, "2147483647) ASC, fulltext_index.updated_at DESC")
	assert.Equal(t, []any{"ab", "ab"}, args)
}

type sliceSource []Document

func (s sliceSource) Each(_ context.Context, fn func(Indexable) error) error {
	for _, d := range s {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func TestIndexAllBatches(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()

	var src sliceSource
	for i := 1; i <= 7; i++ {
		src = append(src, Document{Type: "posts", ID: int64(i), Title: "t"})
	}
	n, err := NewIndexer(s).SetBatchSize(3).IndexAll(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fulltext_index").Scan(&count))
	assert.Equal(t, 7, count)

	n, err = NewIndexer(s).IndexAll(ctx, sliceSource{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTableSource(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE articles (id INTEGER PRIMARY KEY, title TEXT, subtitle TEXT, body TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO articles(id, title, subtitle, body) VALUES
		(1, 'Control panel', NULL, 'settings'),
		(2, 'Copy paste', 'clipboard', '')`)
	require.NoError(t, err)

	src := TableSource{
		DB:             db,
		Dialect:        s.Dialect(),
		Table:          "articles",
		Type:           "article",
		TitleColumns:   []string{"title", "subtitle"},
		ContentColumns: []string{"body"},
	}
	doc, err := src.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Document{Type: "article", ID: 2, Title: "Copy paste clipboard", Content: ""}, doc)

	_, err = src.Get(ctx, 99)
	assert.True(t, serrors.IsKind(err, serrors.ErrNotFound))

	n, err := NewIndexer(s).IndexAll(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, err := s.Get(ctx, "article", 1)
	require.NoError(t, err)
	assert.Equal(t, "Control panel", rec.IndexedTitle)
	assert.Equal(t, "settings", rec.IndexedContent)

	recs, err := NewSearch(s).RunForType(ctx, "cp", "article", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, indexableIDs(recs))
}

func TestIndexAllFlushesWhileSourceIsOpen(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE articles (id INTEGER PRIMARY KEY, title TEXT, body TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO articles(id, title, body) VALUES
		(1, 'one', 'a'), (2, 'two', 'b'), (3, 'three', 'c'), (4, 'four', 'd'), (5, 'five', 'e')`)
	require.NoError(t, err)

	src := TableSource{
		DB:             db,
		Dialect:        s.Dialect(),
		Table:          "articles",
		Type:           "article",
		TitleColumns:   []string{"title"},
		ContentColumns: []string{"body"},
	}
	start := time.Now()
	n, err := NewIndexer(s).SetBatchSize(2).IndexAll(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Less(t, time.Since(start), 2*time.Second)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fulltext_index WHERE indexable_type = 'article'").Scan(&count))
	assert.Equal(t, 5, count)
}

func TestTableSourceValidation(t *testing.T) {
	s, db := newStore(t)
	bad := TableSource{DB: db, Dialect: s.Dialect(), Table: "articles", TitleColumns: []string{"title; --"}}
	err := bad.Each(context.Background(), func(Indexable) error { return nil })
	assert.True(t, serrors.IsKind(err, serrors.ErrInvalidIdentifier))

	empty := TableSource{DB: db, Dialect: s.Dialect(), Table: "articles"}
	err = empty.Each(context.Background(), func(Indexable) error { return nil })
	assert.True(t, serrors.IsKind(err, serrors.ErrConfiguration))
}

func indexableIDs(recs []IndexedRecord) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.IndexableID)
	}
	return out
}

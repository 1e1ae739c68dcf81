package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministore/searchable/searchable/storage/sqlbuilder"
)

func TestDialectFragments(t *testing.T) {
	a := New("postgres://unused", "")
	assert.Equal(t, sqlbuilder.PlaceholderDollar, a.PlaceholderStyle())
	assert.Equal(t, "CAST(posts.title AS TEXT) ILIKE '%c%p%'", a.Like("posts.title", "%c%p%"))
	assert.Equal(t, "STRPOS(LOWER(CAST(posts.title AS TEXT)), LOWER(CAST(? AS TEXT)))", a.Locate("posts.title"))
}

func TestIndexTemplatesUseDollarPlaceholders(t *testing.T) {
	sqlt := New("postgres://unused", "").IndexSQL("app.fulltext_index")
	assert.Contains(t, sqlt.CreateTable, "CREATE TABLE IF NOT EXISTS app.fulltext_index")
	assert.Contains(t, sqlt.CreateTable, "idx_app_fulltext_index_type")
	assert.Contains(t, sqlt.Upsert, "VALUES($1, $2, $3, $4, $5, $5)")
	assert.Equal(t, "DELETE FROM app.fulltext_index WHERE indexable_type = $1 AND indexable_id = $2", sqlt.Delete)
}

func TestConnectRejectsBadSchema(t *testing.T) {
	dsn := os.Getenv("SEARCHABLE_PG_DSN")
	if dsn == "" {
		t.Skip("SEARCHABLE_PG_DSN not set")
	}
	_, err := New(dsn, `bad"schema`).Connect(context.Background())
	require.Error(t, err)
}

func TestListColumns(t *testing.T) {
	dsn := os.Getenv("SEARCHABLE_PG_DSN")
	if dsn == "" {
		t.Skip("SEARCHABLE_PG_DSN not set")
	}
	ctx := context.Background()
	a := New(dsn, "searchable_test")
	db, err := a.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS posts; CREATE TABLE posts (id BIGSERIAL PRIMARY KEY, title TEXT, body TEXT)`)
	require.NoError(t, err)

	cols, err := a.ListColumns(ctx, db, "posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "body"}, cols)
}

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministore/searchable/searchable"
	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/storage"
)

const sample = `
backend: sqlite
dsn: ./app.db
index_table: fulltext_index
sort_by_relevance: false
log_level: debug
models:
  posts:
    columns:
      - posts.title
      - author: users.name
    sortable_columns: [posts.created_at]
    joins:
      - {table: users, left: users.id, right: posts.user_id, kind: left}
  users:
    columns: {full_name: users.name}
`

func TestParseSample(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, storage.BackendSQLite, cfg.BackendOrDefault())
	assert.Equal(t, "./app.db", cfg.DSNOrDefault())
	assert.False(t, cfg.ShouldSortByRelevance())
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"posts", "users"}, cfg.ModelNames())

	posts := cfg.Model("posts")
	assert.Equal(t, grid.NewColumnMap(grid.Positional("posts.title"), grid.Aliased("author", "users.name")), posts.Columns)
	assert.Equal(t, grid.Columns("posts.created_at"), posts.SortableColumns)
	assert.Equal(t, searchable.Joins{{Table: "users", Left: "users.id", Right: "posts.user_id", Kind: "left"}}, posts.Joins)

	users := cfg.Model("users")
	assert.Equal(t, grid.NewColumnMap(grid.Aliased("full_name", "users.name")), users.Columns)
	assert.Nil(t, users.SortableColumns)
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, storage.BackendSQLite, cfg.BackendOrDefault())
	assert.Equal(t, DefaultDSN, cfg.DSNOrDefault())
	assert.Equal(t, "fulltext_index", cfg.IndexTableOrDefault())
	assert.True(t, cfg.ShouldSortByRelevance())
	assert.Equal(t, slog.LevelInfo, cfg.Level())

	_, err = cfg.RequireModel("posts")
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Equal(t, searchable.Config{}, cfg.Model("posts"))
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"backend":     "backend: mysql",
		"log level":   "log_level: loud",
		"index table": "index_table: 'a b'",
		"model name":  "models: {'x;y': {}}",
		"join kind":   "models: {posts: {joins: [{table: u, left: a, right: b, kind: sideways}]}}",
		"join half":   "models: {posts: {joins: [{table: u, left: a}]}}",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidValue, name)
	}
}

func TestCrossJoinNeedsNoCondition(t *testing.T) {
	_, err := Parse([]byte("models: {posts: {joins: [{table: tags, kind: cross}]}}"))
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path())

	path := filepath.Join(dir, "searchable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())

	require.NoError(t, os.WriteFile(path, []byte("models: [nope"), 0o644))
	_, err = Load(path)
	assert.True(t, serrors.IsKind(err, serrors.ErrConfigFile))

	require.NoError(t, os.WriteFile(path, []byte("backend: oracle"), 0o644))
	_, err = Load(path)
	assert.True(t, serrors.IsKind(err, serrors.ErrConfigFile))
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestPostgresHasNoDefaultDSN(t *testing.T) {
	cfg, err := Parse([]byte("backend: postgres"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DSNOrDefault())
}

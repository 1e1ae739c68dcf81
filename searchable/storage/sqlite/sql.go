package sqlite

import (
	"fmt"

	"github.com/ministore/searchable/searchable/storage"
)

func indexTemplates(table string) storage.IndexSQL {
	return storage.IndexSQL{
		CreateTable: fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
  id              INTEGER PRIMARY KEY AUTOINCREMENT,
  indexable_type  TEXT    NOT NULL,
  indexable_id    INTEGER NOT NULL,
  indexed_title   TEXT    NOT NULL DEFAULT '',
  indexed_content TEXT    NOT NULL DEFAULT '',
  created_at      INTEGER NOT NULL,
  updated_at      INTEGER NOT NULL,
  UNIQUE (indexable_type, indexable_id)
);
CREATE INDEX IF NOT EXISTS idx_%[2]s_type ON %[1]s(indexable_type);`, table, indexName(table)),
		Upsert: fmt.Sprintf(`INSERT INTO %s(indexable_type, indexable_id, indexed_title, indexed_content, created_at, updated_at)
			VALUES(?1, ?2, ?3, ?4, ?5, ?5)
			ON CONFLICT(indexable_type, indexable_id) DO UPDATE SET
			  indexed_title=excluded.indexed_title,
			  indexed_content=excluded.indexed_content,
			  updated_at=excluded.updated_at`, table),
		Delete: fmt.Sprintf("DELETE FROM %s WHERE indexable_type = ?1 AND indexable_id = ?2", table),
		Get: fmt.Sprintf(`SELECT id, indexable_type, indexable_id, indexed_title, indexed_content, created_at, updated_at
			FROM %s WHERE indexable_type = ?1 AND indexable_id = ?2`, table),
	}
}

// indexName flattens a schema-qualified table name for use in an index name.
func indexName(table string) string {
	b := []byte(table)
	for i, c := range b {
		if c == '.' {
			b[i] = '_'
		}
	}
	return string(b)
}

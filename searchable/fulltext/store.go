package fulltext

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/storage"
)

// DefaultTable is the index table used when Options.Table is empty.
const DefaultTable = "fulltext_index"

type Options struct {
	Table  string
	Now    func() time.Time
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{Table: DefaultTable, Now: time.Now, Logger: slog.Default()}
}

// Store reads and writes the index table.
type Store struct {
	adapter storage.Adapter
	db      *sql.DB
	table   string
	sqlt    storage.IndexSQL
	now     func() time.Time
	logger  *slog.Logger
}

func NewStore(adapter storage.Adapter, db *sql.DB, opts Options) (*Store, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if !storage.ValidIdentifier(opts.Table) {
		return nil, serrors.InvalidIdentifierError(opts.Table)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		adapter: adapter,
		db:      db,
		table:   opts.Table,
		sqlt:    adapter.IndexSQL(opts.Table),
		now:     opts.Now,
		logger:  opts.Logger,
	}, nil
}

func (s *Store) Table() string { return s.table }

func (s *Store) Dialect() storage.Dialect { return s.adapter }

func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the index table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.sqlt.CreateTable); err != nil {
		return serrors.Wrap(serrors.ErrSQL, "create index table", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, ex execer, rec Indexable, nowMS int64) error {
	_, err := ex.ExecContext(ctx, s.sqlt.Upsert,
		rec.IndexableType(), rec.IndexableID(), rec.IndexTitle(), rec.IndexContent(), nowMS)
	if err != nil {
		return serrors.Wrap(serrors.ErrSQL,
			fmt.Sprintf("upsert %s#%d", rec.IndexableType(), rec.IndexableID()), err)
	}
	return nil
}

// Upsert writes the title and content of rec, creating the row if needed.
func (s *Store) Upsert(ctx context.Context, rec Indexable) error {
	if err := s.upsert(ctx, s.db, rec, s.now().UnixMilli()); err != nil {
		return err
	}
	s.logger.Info("indexed record", "table", s.table, "type", rec.IndexableType(), "id", rec.IndexableID())
	return nil
}

// UpsertAll writes recs in one transaction and returns how many were written.
func (s *Store) UpsertAll(ctx context.Context, recs []Indexable) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, serrors.Wrap(serrors.ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	nowMS := s.now().UnixMilli()
	for _, rec := range recs {
		if err := s.upsert(ctx, tx, rec, nowMS); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, serrors.Wrap(serrors.ErrSQL, "commit", err)
	}
	return len(recs), nil
}

// Delete removes the row of (typ, id). It reports whether a row existed.
func (s *Store) Delete(ctx context.Context, typ string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.sqlt.Delete, typ, id)
	if err != nil {
		return false, serrors.Wrap(serrors.ErrSQL, fmt.Sprintf("delete %s#%d", typ, id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, serrors.Wrap(serrors.ErrSQL, "rows affected", err)
	}
	s.logger.Info("unindexed record", "table", s.table, "type", typ, "id", id, "existed", n > 0)
	return n > 0, nil
}

// Get returns the row of (typ, id) or a not_found error.
func (s *Store) Get(ctx context.Context, typ string, id int64) (*IndexedRecord, error) {
	row := s.db.QueryRowContext(ctx, s.sqlt.Get, typ, id)
	rec, err := scanRecord(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, serrors.NotFoundError(fmt.Sprintf("%s#%d is not indexed", typ, id))
	}
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "get indexed record", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the columns listed in recordColumns, in order.
func scanRecord(sc scanner) (*IndexedRecord, error) {
	var (
		rec                  IndexedRecord
		createdMS, updatedMS int64
	)
	if err := sc.Scan(&rec.ID, &rec.IndexableType, &rec.IndexableID,
		&rec.IndexedTitle, &rec.IndexedContent, &createdMS, &updatedMS); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(createdMS)
	rec.UpdatedAt = time.UnixMilli(updatedMS)
	return &rec, nil
}

var recordColumns = []string{
	"id", "indexable_type", "indexable_id", "indexed_title", "indexed_content", "created_at", "updated_at",
}

package fulltext

import (
	"context"
	"log/slog"
)

// Source yields the records of one type to index.
type Source interface {
	Each(ctx context.Context, fn func(Indexable) error) error
}

// DefaultBatchSize is the number of records IndexAll writes per transaction.
const DefaultBatchSize = 500

// Indexer keeps the index table in sync with record changes.
type Indexer struct {
	store     *Store
	batchSize int
	logger    *slog.Logger
}

func NewIndexer(store *Store) *Indexer {
	return &Indexer{store: store, batchSize: DefaultBatchSize, logger: store.logger}
}

// SetBatchSize sets how many records IndexAll commits at once; n <= 0 restores the default.
func (ix *Indexer) SetBatchSize(n int) *Indexer {
	if n <= 0 {
		n = DefaultBatchSize
	}
	ix.batchSize = n
	return ix
}

// IndexModel writes rec to the index, replacing its previous title and content.
func (ix *Indexer) IndexModel(ctx context.Context, rec Indexable) error {
	return ix.store.Upsert(ctx, rec)
}

// UnindexModel removes rec from the index. Removing a record that was never
// indexed is not an error.
func (ix *Indexer) UnindexModel(ctx context.Context, rec Indexable) error {
	_, err := ix.store.Delete(ctx, rec.IndexableType(), rec.IndexableID())
	return err
}

// IndexAll indexes every record of src and returns how many were written.
func (ix *Indexer) IndexAll(ctx context.Context, src Source) (int, error) {
	total := 0
	batch := make([]Indexable, 0, ix.batchSize)
	flush := func() error {
		n, err := ix.store.UpsertAll(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	err := src.Each(ctx, func(rec Indexable) error {
		batch = append(batch, rec)
		if len(batch) >= ix.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	ix.logger.Info("indexed all records", "table", ix.store.table, "count", total)
	return total, nil
}

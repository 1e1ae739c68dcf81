// Package schema caches table column listings.
//
// A Cache is meant to be created once per database and shared by every
// searchable model. Entries are filled on first use and kept for the life of
// the process unless Invalidate is called.
package schema

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	serrors "github.com/ministore/searchable/searchable/errors"
)

// Introspector lists the columns of a table in declaration order.
type Introspector interface {
	ListColumns(ctx context.Context, table string) ([]string, error)
}

// ColumnCache is the read side used by searchable models.
type ColumnCache interface {
	Columns(ctx context.Context, table string) ([]string, error)
	Invalidate(table string)
}

type Cache struct {
	source Introspector

	mu     sync.RWMutex
	tables map[string][]string
	group  singleflight.Group
}

var _ ColumnCache = (*Cache)(nil)

func NewCache(source Introspector) *Cache {
	return &Cache{source: source, tables: make(map[string][]string)}
}

// Columns returns a copy of the cached listing for table, loading it once if
// needed. Concurrent first lookups of the same table share a single database
// call; that call is detached from any one caller's cancellation, and a
// caller whose ctx ends stops waiting without failing the others.
func (c *Cache) Columns(ctx context.Context, table string) ([]string, error) {
	c.mu.RLock()
	cols, ok := c.tables[table]
	c.mu.RUnlock()
	if ok {
		return slices.Clone(cols), nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(table, func() (any, error) {
		c.mu.RLock()
		cols, ok := c.tables[table]
		c.mu.RUnlock()
		if ok {
			return cols, nil
		}
		cols, err := c.source.ListColumns(loadCtx, table)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[table] = cols
		c.mu.Unlock()
		return cols, nil
	})

	select {
	case <-ctx.Done():
		return nil, serrors.Wrap(serrors.ErrSQL, "list columns of "+table, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			if _, ok := res.Err.(*serrors.Error); ok {
				return nil, res.Err
			}
			return nil, serrors.Wrap(serrors.ErrSQL, "list columns of "+table, res.Err)
		}
		return slices.Clone(res.Val.([]string)), nil
	}
}

func (c *Cache) Invalidate(table string) {
	c.mu.Lock()
	delete(c.tables, table)
	c.mu.Unlock()
	c.group.Forget(table)
}

// Tables returns the names currently cached.
func (c *Cache) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tables))
	for t := range c.tables {
		out = append(out, t)
	}
	return out
}

// Lister is the adapter method used by DBIntrospector.
type Lister interface {
	ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error)
}

// DBIntrospector binds an adapter to an open database.
type DBIntrospector struct {
	DB     *sql.DB
	Lister Lister
}

func (d DBIntrospector) ListColumns(ctx context.Context, table string) ([]string, error) {
	return d.Lister.ListColumns(ctx, d.DB, table)
}

package fulltext

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/storage"
)

// TableSource reads indexable records from the rows of a table. The title
// and content of a row are its title and content columns joined by a space,
// skipping NULL and empty values.
type TableSource struct {
	DB      query.Queryer
	Dialect storage.Dialect

	Table          string
	Type           string // defaults to Table
	IDColumn       string // defaults to "id"
	TitleColumns   []string
	ContentColumns []string
}

func (ts TableSource) indexableType() string {
	if ts.Type != "" {
		return ts.Type
	}
	return ts.Table
}

func (ts TableSource) idColumn() string {
	if ts.IDColumn != "" {
		return ts.IDColumn
	}
	return "id"
}

func (ts TableSource) validate() error {
	if ts.DB == nil || ts.Dialect == nil {
		return serrors.ConfigurationError("table source needs a database and a dialect")
	}
	if len(ts.TitleColumns) == 0 && len(ts.ContentColumns) == 0 {
		return serrors.ConfigurationError("table source " + ts.Table + " has no title or content columns")
	}
	idents := append([]string{ts.Table, ts.idColumn()}, ts.TitleColumns...)
	for _, ident := range append(idents, ts.ContentColumns...) {
		if !storage.ValidIdentifier(ident) {
			return serrors.InvalidIdentifierError(ident)
		}
	}
	return nil
}

func (ts TableSource) query() *query.Builder {
	q := query.New(ts.Table, ts.Dialect.PlaceholderStyle())
	q.Select(ts.idColumn())
	q.AddSelect(ts.TitleColumns...)
	q.AddSelect(ts.ContentColumns...)
	q.OrderBy(ts.idColumn(), "asc")
	return q
}

func (ts TableSource) document(row []any) (Document, error) {
	id, err := toInt64(row[0])
	if err != nil {
		return Document{}, serrors.Wrap(serrors.ErrSQL, "read "+ts.idColumn()+" of "+ts.Table, err)
	}
	nt := len(ts.TitleColumns)
	return Document{
		Type:    ts.indexableType(),
		ID:      id,
		Title:   joinValues(row[1 : 1+nt]),
		Content: joinValues(row[1+nt:]),
	}, nil
}

// Each calls fn for every row in id order.
func (ts TableSource) Each(ctx context.Context, fn func(Indexable) error) error {
	if err := ts.validate(); err != nil {
		return err
	}
	return ts.scan(ctx, ts.query(), fn)
}

// Get returns the record with the given id or a not_found error.
func (ts TableSource) Get(ctx context.Context, id int64) (Document, error) {
	if err := ts.validate(); err != nil {
		return Document{}, err
	}
	q := ts.query()
	q.WhereRaw(ts.idColumn()+" = ?", id)

	var (
		doc   Document
		found bool
	)
	err := ts.scan(ctx, q, func(rec Indexable) error {
		doc, found = rec.(Document), true
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	if !found {
		return Document{}, serrors.NotFoundError(fmt.Sprintf("%s#%d does not exist", ts.Table, id))
	}
	return doc, nil
}

func (ts TableSource) scan(ctx context.Context, q *query.Builder, fn func(Indexable) error) error {
	rows, err := q.Rows(ctx, ts.DB)
	if err != nil {
		return err
	}
	defer rows.Close()

	n := 1 + len(ts.TitleColumns) + len(ts.ContentColumns)
	for rows.Next() {
		vals := make([]any, n)
		ptrs := make([]any, n)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return serrors.Wrap(serrors.ErrSQL, "scan "+ts.Table, err)
		}
		doc, err := ts.document(vals)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return serrors.Wrap(serrors.ErrSQL, "iterate "+ts.Table, err)
	}
	return nil
}

func joinValues(vals []any) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		var s string
		switch x := v.(type) {
		case nil:
			continue
		case []byte:
			s = string(x)
		case string:
			s = x
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("id %v has unsupported type %T", v, v)
	}
}

var _ Source = TableSource{}

// Package fulltext keeps a denormalized search table in sync with indexable
// records and searches it across record types.
//
// Each indexed record is one row keyed by (indexable_type, indexable_id)
// holding a title and a content string. Writes are upserts; there is no
// transactional link to the record's own table.
package fulltext

import "time"

// Indexable is a record that can be written to the index table.
type Indexable interface {
	IndexableType() string
	IndexableID() int64
	IndexTitle() string
	IndexContent() string
}

// IndexedRecord is one row of the index table.
type IndexedRecord struct {
	ID             int64     `json:"id"`
	IndexableType  string    `json:"indexable_type"`
	IndexableID    int64     `json:"indexable_id"`
	IndexedTitle   string    `json:"indexed_title"`
	IndexedContent string    `json:"indexed_content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Document is a plain Indexable.
type Document struct {
	Type    string
	ID      int64
	Title   string
	Content string
}

func (d Document) IndexableType() string { return d.Type }
func (d Document) IndexableID() int64    { return d.ID }
func (d Document) IndexTitle() string    { return d.Title }
func (d Document) IndexContent() string  { return d.Content }

var _ Indexable = Document{}

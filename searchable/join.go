package searchable

import (
	"github.com/ministore/searchable/searchable/query"
)

// Join is a table joined into the query before searching, so that columns of
// the joined table can be searched.
type Join struct {
	Table string `yaml:"table" json:"table"`
	Left  string `yaml:"left" json:"left"`
	Right string `yaml:"right" json:"right"`
	Kind  string `yaml:"kind,omitempty" json:"kind,omitempty"` // left (default), inner, right, cross
}

// JoinKind parses Kind.
func (j Join) JoinKind() (query.JoinKind, error) {
	return query.ParseJoinKind(j.Kind)
}

// Joins is keyed by target table: a table appears at most once.
type Joins []Join

// Merge returns js with the joins of other added. A join for a table already
// present replaces it in place.
func (js Joins) Merge(other Joins) Joins {
	out := make(Joins, len(js), len(js)+len(other))
	copy(out, js)
	for _, j := range other {
		if i := out.indexOf(j.Table); i >= 0 {
			out[i] = j
			continue
		}
		out = append(out, j)
	}
	return out
}

func (js Joins) indexOf(table string) int {
	for i, j := range js {
		if j.Table == table {
			return i
		}
	}
	return -1
}

// Apply adds every join to q. Kinds are checked first; on error q is unchanged.
func (js Joins) Apply(q query.Query) error {
	kinds := make([]query.JoinKind, len(js))
	for i, j := range js {
		kind, err := j.JoinKind()
		if err != nil {
			return err
		}
		kinds[i] = kind
	}
	for i, j := range js {
		q.Join(kinds[i], j.Table, j.Left, j.Right)
	}
	return nil
}

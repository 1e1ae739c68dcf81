// Package grid maps logical column keys to SQL expressions and turns them
// into select lists.
package grid

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	serrors "github.com/ministore/searchable/searchable/errors"
)

// Column is one entry of a ColumnMap. An empty Key marks a positional entry
// whose expression is both what is displayed and what is compared.
type Column struct {
	Key  string
	Expr string
}

// Positional returns a column selected and compared as expr.
func Positional(expr string) Column { return Column{Expr: expr} }

// Aliased returns a column projected as "expr AS key".
func Aliased(key, expr string) Column { return Column{Key: key, Expr: expr} }

// ColumnMap is an ordered mapping from logical column names to SQL expressions.
type ColumnMap []Column

// NewColumnMap builds a map; later keyed columns replace earlier ones with the same key.
func NewColumnMap(cols ...Column) ColumnMap {
	return ColumnMap(nil).Merge(ColumnMap(cols))
}

// Columns builds a map of positional expressions.
func Columns(exprs ...string) ColumnMap {
	m := make(ColumnMap, 0, len(exprs))
	for _, e := range exprs {
		m = append(m, Positional(e))
	}
	return m
}

// Exprs returns every expression in order.
func (m ColumnMap) Exprs() []string {
	out := make([]string, 0, len(m))
	for _, c := range m {
		out = append(out, c.Expr)
	}
	return out
}

// Keys returns the output name of every column: its key, else the part of the
// expression after the last dot, else the expression itself.
func (m ColumnMap) Keys() []string {
	out := make([]string, 0, len(m))
	for _, c := range m {
		switch {
		case c.Key != "":
			out = append(out, c.Key)
		case strings.Contains(c.Expr, "."):
			out = append(out, c.Expr[strings.LastIndex(c.Expr, ".")+1:])
		default:
			out = append(out, c.Expr)
		}
	}
	return out
}

func (m ColumnMap) HasKey(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range m {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Contains reports whether expr is one of the map's expressions verbatim.
func (m ColumnMap) Contains(expr string) bool {
	for _, c := range m {
		if c.Expr == expr {
			return true
		}
	}
	return false
}

// Find resolves key to an expression. An explicit key wins; otherwise the
// first expression equal to key or ending in ".key" is returned.
func (m ColumnMap) Find(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, c := range m {
		if c.Key == key {
			return c.Expr, true
		}
	}
	suffix := "." + key
	for _, c := range m {
		if c.Expr == key || strings.HasSuffix(c.Expr, suffix) {
			return c.Expr, true
		}
	}
	return "", false
}

// Resolve is Find that reports a miss as an unknown_column error.
func (m ColumnMap) Resolve(key string) (string, error) {
	expr, ok := m.Find(key)
	if !ok {
		return "", serrors.UnknownColumnError(key)
	}
	return expr, nil
}

func (m ColumnMap) ResolveMany(keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		expr, err := m.Resolve(k)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

// Merge returns m followed by other. A keyed column of other replaces the
// column of m with the same key in place; positional columns are appended.
func (m ColumnMap) Merge(other ColumnMap) ColumnMap {
	out := make(ColumnMap, len(m), len(m)+len(other))
	copy(out, m)
	for _, c := range other {
		if c.Key != "" {
			if i := out.indexOf(c.Key); i >= 0 {
				out[i] = c
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func (m ColumnMap) indexOf(key string) int {
	for i, c := range m {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Clone returns a copy that does not share storage with m.
func (m ColumnMap) Clone() ColumnMap {
	if m == nil {
		return nil
	}
	out := make(ColumnMap, len(m))
	copy(out, m)
	return out
}

var keyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseColumn reads "expr" or "key=expr". The key form is only recognised when
// the text before the first '=' is a bare identifier, so expressions such as
// "CASE WHEN a=b ..." stay positional.
func ParseColumn(s string) (Column, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Column{}, fmt.Errorf("empty column")
	}
	if k, expr, ok := strings.Cut(s, "="); ok && keyRe.MatchString(strings.TrimSpace(k)) {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			return Column{}, fmt.Errorf("column %q has no expression", s)
		}
		return Aliased(strings.TrimSpace(k), expr), nil
	}
	return Positional(s), nil
}

func ParseColumns(specs []string) (ColumnMap, error) {
	var cols ColumnMap
	for _, s := range specs {
		c, err := ParseColumn(s)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return NewColumnMap(cols...), nil
}

// UnmarshalYAML accepts a sequence whose items are scalars (positional) or
// single-pair mappings (key: expr), or a mapping of key: expr.
func (m *ColumnMap) UnmarshalYAML(node *yaml.Node) error {
	var cols ColumnMap
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				cols = append(cols, Positional(item.Value))
			case yaml.MappingNode:
				pairs, err := mappingColumns(item)
				if err != nil {
					return err
				}
				cols = append(cols, pairs...)
			default:
				return fmt.Errorf("line %d: column must be a string or key: expr", item.Line)
			}
		}
	case yaml.MappingNode:
		pairs, err := mappingColumns(node)
		if err != nil {
			return err
		}
		cols = pairs
	default:
		return fmt.Errorf("line %d: columns must be a list or a mapping", node.Line)
	}
	*m = NewColumnMap(cols...)
	return nil
}

func mappingColumns(node *yaml.Node) (ColumnMap, error) {
	var cols ColumnMap
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: column alias must map a name to an expression", k.Line)
		}
		cols = append(cols, Aliased(k.Value, v.Value))
	}
	return cols, nil
}

// MarshalYAML writes the sequence form read by UnmarshalYAML.
func (m ColumnMap) MarshalYAML() (any, error) {
	out := make([]any, 0, len(m))
	for _, c := range m {
		if c.Key == "" {
			out = append(out, c.Expr)
		} else {
			out = append(out, map[string]string{c.Key: c.Expr})
		}
	}
	return out, nil
}

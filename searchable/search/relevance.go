package search

import (
	"fmt"

	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/query"
	"github.com/ministore/searchable/searchable/storage"
)

// NotFoundRank is the rank of a column that does not contain the search string.
const NotFoundRank = 2147483647

// RankExpr is the ordering expression for one column: the 1-based position of
// the bound search string, or NotFoundRank when absent.
func RankExpr(d storage.Dialect, column string) string {
	return fmt.Sprintf("COALESCE(NULLIF(%s, 0), %d)", d.Locate(column), NotFoundRank)
}

// ApplyRelevanceOrder orders q by where searchStr first occurs in each of
// sortColumns, ascending. The first column dominates and later columns break
// ties. The terms are placed ahead of any ordering q already has.
//
// searchStr is bound as a parameter.
func ApplyRelevanceOrder(q query.Query, d storage.Dialect, sortColumns []string, searchStr string) error {
	if q == nil {
		return serrors.ConfigurationError("query not set")
	}
	if d == nil {
		return serrors.ConfigurationError("relevance sort requires a dialect")
	}
	if len(sortColumns) == 0 {
		return serrors.ConfigurationError("relevance sort requires sort columns")
	}
	for i := len(sortColumns) - 1; i >= 0; i-- {
		q.PrependOrderByRaw(RankExpr(d, sortColumns[i])+" ASC", searchStr)
	}
	return nil
}

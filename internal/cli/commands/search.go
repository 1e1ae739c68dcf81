package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/cliutil"
	"github.com/ministore/searchable/searchable"
	serrors "github.com/ministore/searchable/searchable/errors"
	"github.com/ministore/searchable/searchable/grid"
	"github.com/ministore/searchable/searchable/query"
)

func NewSearchCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var (
		columns     []string
		joins       []string
		order       string
		limit       int
		noRelevance bool
		explain     bool
	)
	cmd := &cobra.Command{
		Use:   "search <table> <query>",
		Short: "Search the rows of a table",
		Long: `Search the rows of a table.

Columns, sortable columns and joins come from the models section of the config
file. Without one, every column of the table is searched. --column and --join
replace the configured values for this run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, searchStr := args[0], args[1]
			return withEnv(cmd, g, func(ctx context.Context, env *cliutil.Env) error {
				m, err := env.Model(table)
				if err != nil {
					return err
				}
				if len(columns) > 0 {
					cols, err := grid.ParseColumns(columns)
					if err != nil {
						return serrors.Wrap(serrors.ErrConfiguration, "--column", err)
					}
					m.SetSearchableColumns(cols)
				}
				if len(joins) > 0 {
					var js searchable.Joins
					for _, s := range joins {
						j, err := parseJoin(s)
						if err != nil {
							return serrors.Wrap(serrors.ErrConfiguration, "--join", err)
						}
						js = append(js, j)
					}
					m.SetSearchableJoins(js)
				}
				if cmd.Flags().Changed("no-relevance") {
					m.SetSortByRelevance(!noRelevance)
				}

				q := query.New(m.Table(), env.Adapter.PlaceholderStyle())
				if order != "" {
					if err := applyOrder(ctx, m, q, order); err != nil {
						return err
					}
				}
				if limit > 0 {
					q.Limit(limit)
				}
				if _, err := m.ApplySearch(ctx, q, searchStr); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if explain {
					stmt, args, err := q.ToSQL()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "SQL: %s\nArgs: %v\n", stmt, args)
				}
				rows, err := q.ScanMaps(ctx, env.DB)
				if err != nil {
					return err
				}
				printRows(out, cliutil.ParseOutputFormat(g.Format), rows, "id")
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&columns, "column", nil, "searched column, expr or key=expr (repeatable)")
	f.StringArrayVar(&joins, "join", nil, "join table:left:right[:left|inner|right] (repeatable)")
	f.StringVar(&order, "order", "", "order by a searchable or sortable column, col[:asc|desc]")
	f.IntVar(&limit, "limit", 20, "max rows, 0 for no limit")
	f.BoolVar(&noRelevance, "no-relevance", false, "do not rank rows by relevance")
	f.BoolVar(&explain, "explain", false, "print the generated SQL")
	return cmd
}

// applyOrder adds a user supplied ORDER BY after checking the column against
// the model, so arbitrary SQL cannot be passed through.
func applyOrder(ctx context.Context, m *searchable.Model, q *query.Builder, spec string) error {
	col, dir, err := parseOrder(spec)
	if err != nil {
		return err
	}
	ok, err := m.IsColumnValid(ctx, col)
	if err != nil {
		return err
	}
	if !ok {
		return serrors.UnknownColumnError(col)
	}
	expr, err := m.SortableColumn(ctx, col)
	if serrors.IsKind(err, serrors.ErrUnknownColumn) {
		expr, err = col, nil
	}
	if err != nil {
		return err
	}
	// bare physical names are qualified so joins cannot make them ambiguous
	if !strings.Contains(expr, ".") {
		physical, err := m.TableColumns(ctx)
		if err != nil {
			return err
		}
		if slices.Contains(physical, expr) {
			expr = tableRef(m.Table()) + "." + expr
		}
	}
	q.OrderBy(expr, dir)
	return nil
}

func tableRef(table string) string {
	if _, name, ok := strings.Cut(table, "."); ok {
		return name
	}
	return table
}

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/cliutil"
	"github.com/ministore/searchable/searchable/grid"
)

func NewColumnsCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "Show the searchable, sortable and physical columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, env *cliutil.Env) error {
				m, err := env.Model(args[0])
				if err != nil {
					return err
				}
				searchCols, err := m.SearchableColumns(ctx)
				if err != nil {
					return err
				}
				sortCols, err := m.SortableColumns(ctx)
				if err != nil {
					return err
				}
				physical, err := m.TableColumns(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
					cliutil.PrintJSON(out, map[string]any{
						"table":      m.Table(),
						"searchable": grid.MakeSelect(searchCols),
						"sortable":   grid.MakeSelect(sortCols),
						"physical":   physical,
						"joins":      m.SearchableJoins(),
					})
					return nil
				}
				fmt.Fprintf(out, "Table: %s\n", m.Table())
				printColumnMap(out, "Searchable", searchCols)
				printColumnMap(out, "Sortable", sortCols)
				fmt.Fprintln(out, "Physical:")
				for _, c := range physical {
					fmt.Fprintf(out, "  %s\n", c)
				}
				if joins := m.SearchableJoins(); len(joins) > 0 {
					fmt.Fprintln(out, "Joins:")
					for _, j := range joins {
						kind, _ := j.JoinKind()
						fmt.Fprintf(out, "  %s %s ON %s = %s\n", kind, j.Table, j.Left, j.Right)
					}
				}
				return nil
			})
		},
	}
}

func printColumnMap(w io.Writer, title string, cols grid.ColumnMap) {
	fmt.Fprintf(w, "%s:\n", title)
	keys := cols.Keys()
	for i, c := range cols {
		fmt.Fprintf(w, "  %-20s %s\n", keys[i], c.Expr)
	}
}

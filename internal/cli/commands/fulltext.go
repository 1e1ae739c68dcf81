package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/cliutil"
	"github.com/ministore/searchable/searchable/fulltext"
)

func NewFulltextCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var (
		typ   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "fulltext <query>",
		Short: "Search the full-text index across record types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, env *cliutil.Env) error {
				store, err := env.Store(ctx)
				if err != nil {
					return err
				}
				srch := fulltext.NewSearch(store)

				start := time.Now()
				var recs []fulltext.IndexedRecord
				if typ != "" {
					recs, err = srch.RunForType(ctx, args[0], typ, limit)
				} else {
					recs, err = srch.Run(ctx, args[0], limit)
				}
				if err != nil {
					return err
				}
				printRecords(cmd, cliutil.ParseOutputFormat(g.Format), recs, time.Since(start))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only records of this indexable type")
	cmd.Flags().IntVar(&limit, "limit", 20, "max results, 0 for no limit")
	return cmd
}

func printRecords(cmd *cobra.Command, format cliutil.OutputFormat, recs []fulltext.IndexedRecord, dur time.Duration) {
	out := cmd.OutOrStdout()
	switch format {
	case cliutil.FormatJSON:
		if recs == nil {
			recs = []fulltext.IndexedRecord{}
		}
		cliutil.PrintJSON(out, recs)
	case cliutil.FormatIDs:
		for _, r := range recs {
			fmt.Fprintf(out, "%s#%d\n", r.IndexableType, r.IndexableID)
		}
	default:
		fmt.Fprintf(out, "Found %d records in %dms\n", len(recs), dur.Milliseconds())
		for _, r := range recs {
			fmt.Fprintf(out, "- %s#%d  %s\n", r.IndexableType, r.IndexableID, r.IndexedTitle)
		}
	}
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/cliutil"
	"github.com/ministore/searchable/searchable/fulltext"
)

type sourceFlags struct {
	typ      string
	idColumn string
	title    []string
	content  []string
}

func (sf *sourceFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&sf.typ, "type", "", "indexable type stored in the index (default: the table name)")
	f.StringVar(&sf.idColumn, "id-column", "id", "integer id column of the table")
	f.StringSliceVar(&sf.title, "title", nil, "columns forming the indexed title")
	f.StringSliceVar(&sf.content, "content", nil, "columns forming the indexed content")
}

func (sf *sourceFlags) source(env *cliutil.Env, table string) fulltext.TableSource {
	return fulltext.TableSource{
		DB:             env.DB,
		Dialect:        env.Adapter,
		Table:          table,
		Type:           sf.typ,
		IDColumn:       sf.idColumn,
		TitleColumns:   sf.title,
		ContentColumns: sf.content,
	}
}

func NewIndexCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var (
		sf        sourceFlags
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "index <table>",
		Short: "Write every row of a table to the full-text index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, g, func(ctx context.Context, env *cliutil.Env) error {
				store, err := env.Store(ctx)
				if err != nil {
					return err
				}
				n, err := fulltext.NewIndexer(store).SetBatchSize(batchSize).IndexAll(ctx, sf.source(env, args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records into %s\n", n, store.Table())
				return nil
			})
		},
	}
	sf.bind(cmd)
	cmd.Flags().IntVar(&batchSize, "batch-size", fulltext.DefaultBatchSize, "records per transaction")
	return cmd
}

func NewIndexOneCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var sf sourceFlags
	cmd := &cobra.Command{
		Use:   "index-one <table> <id>",
		Short: "Write one row of a table to the full-text index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliutil.Env) error {
				store, err := env.Store(ctx)
				if err != nil {
					return err
				}
				doc, err := sf.source(env, args[0]).Get(ctx, id)
				if err != nil {
					return err
				}
				if err := fulltext.NewIndexer(store).IndexModel(ctx, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %s#%d\n", doc.Type, doc.ID)
				return nil
			})
		},
	}
	sf.bind(cmd)
	return cmd
}

func NewUnindexOneCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unindex-one <type> <id>",
		Short: "Remove one record from the full-text index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliutil.Env) error {
				store, err := env.Store(ctx)
				if err != nil {
					return err
				}
				existed, err := store.Delete(ctx, args[0], id)
				if err != nil {
					return err
				}
				if existed {
					fmt.Fprintf(cmd.OutOrStdout(), "unindexed %s#%d\n", args[0], id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s#%d was not indexed\n", args[0], id)
				}
				return nil
			})
		},
	}
}

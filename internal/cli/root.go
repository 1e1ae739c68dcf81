package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ministore/searchable/internal/cli/commands"
	"github.com/ministore/searchable/internal/cliopt"
)

// NewRootCmd builds the command tree. Output goes to out, errors and logs to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	g := cliopt.DefaultGlobalOptions()
	root := &cobra.Command{
		Use:           "searchable",
		Short:         "Fuzzy search over SQL tables",
		Long:          rootHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	cliopt.BindGlobalFlags(root.PersistentFlags(), &g)

	root.AddCommand(
		commands.NewSearchCmd(&g),
		commands.NewColumnsCmd(&g),
		commands.NewIndexCmd(&g),
		commands.NewIndexOneCmd(&g),
		commands.NewUnindexOneCmd(&g),
		commands.NewFulltextCmd(&g),
		commands.NewConfigCmd(&g),
	)
	return root
}

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	return run(context.Background(), argv, os.Stdout, os.Stderr)
}

func run(ctx context.Context, argv []string, out, errOut io.Writer) int {
	root := NewRootCmd(out, errOut)
	root.SetArgs(argv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/cliutil"
	"github.com/ministore/searchable/searchable"
)

// withEnv loads the config, opens the database and runs fn.
func withEnv(cmd *cobra.Command, g *cliopt.GlobalOptions, fn func(ctx context.Context, env *cliutil.Env) error) error {
	cfg, err := cliutil.LoadConfig(*g)
	if err != nil {
		return err
	}
	logger := cliutil.NewLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	env, err := cliutil.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			logger.Warn("close", "err", cerr)
		}
	}()
	return fn(ctx, env)
}

// parseJoin reads "table:left:right[:kind]".
func parseJoin(s string) (searchable.Join, error) {
	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[1], "cross"):
		return searchable.Join{Table: parts[0], Kind: parts[1]}, nil
	case len(parts) == 3 || len(parts) == 4:
		j := searchable.Join{Table: parts[0], Left: parts[1], Right: parts[2]}
		if len(parts) == 4 {
			j.Kind = parts[3]
		}
		if _, err := j.JoinKind(); err != nil {
			return searchable.Join{}, err
		}
		return j, nil
	default:
		return searchable.Join{}, fmt.Errorf("invalid --join %q (expected table:left:right[:kind])", s)
	}
}

// parseOrder reads "column" or "column:asc|desc".
func parseOrder(s string) (string, string, error) {
	col, dir, _ := strings.Cut(s, ":")
	switch strings.ToLower(dir) {
	case "", "asc":
		return col, "asc", nil
	case "desc":
		return col, "desc", nil
	default:
		return "", "", fmt.Errorf("invalid --order direction %q", dir)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// printRows writes rows in the requested format; idKey names the id column for "ids".
func printRows(w io.Writer, format cliutil.OutputFormat, rows []map[string]any, idKey string) {
	switch format {
	case cliutil.FormatJSON:
		if rows == nil {
			rows = []map[string]any{}
		}
		cliutil.PrintJSON(w, rows)
	case cliutil.FormatIDs:
		for _, r := range rows {
			fmt.Fprintln(w, r[idKey])
		}
	default:
		fmt.Fprintf(w, "Found %d rows\n", len(rows))
		for _, r := range rows {
			keys := make([]string, 0, len(r))
			for k := range r {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fields := make([]string, 0, len(keys))
			for _, k := range keys {
				fields = append(fields, fmt.Sprintf("%s=%v", k, r[k]))
			}
			fmt.Fprintf(w, "- %s\n", strings.Join(fields, "  "))
		}
	}
}

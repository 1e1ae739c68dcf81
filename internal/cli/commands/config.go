package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ministore/searchable/internal/cliopt"
	"github.com/ministore/searchable/internal/cliutil"
	serrors "github.com/ministore/searchable/searchable/errors"
)

func NewConfigCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var (
		listModels bool
		model      string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cliutil.LoadConfig(*g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if listModels {
				for _, name := range cfg.ModelNames() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			if model != "" {
				m, err := cfg.RequireModel(model)
				if err != nil {
					return serrors.Wrap(serrors.ErrConfiguration, "--model", err)
				}
				return encodeYAML(out, m)
			}
			if p := cfg.Path(); p != "" {
				fmt.Fprintf(out, "# %s\n", p)
			} else {
				fmt.Fprintln(out, "# no config file, defaults")
			}
			cfg.Backend = cfg.BackendOrDefault()
			cfg.DSN = cfg.DSNOrDefault()
			cfg.IndexTable = cfg.IndexTableOrDefault()
			sort := cfg.ShouldSortByRelevance()
			cfg.SortByRelevance = &sort
			if cfg.LogLevel == "" {
				cfg.LogLevel = strings.ToLower(cfg.Level().String())
			}

			return encodeYAML(out, cfg)
		},
	}
	cmd.Flags().BoolVar(&listModels, "models", false, "list the configured models only")
	cmd.Flags().StringVar(&model, "model", "", "print the settings of one configured model")
	return cmd
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// sqlpane is a terminal SQL client for SQLite, Postgres and MySQL.
// It can run locally or serve its UI over SSH.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johan-st/sqlpane/internal/cli"
	"github.com/johan-st/sqlpane/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "sqlpane [connection|url]",
		Short: "Terminal SQL client",
		Long: "sqlpane opens an interactive SQL client on a configured connection, a\n" +
			"database URL (postgres://, mysql://, sqlite://) or a SQLite file.",
		Example: `  sqlpane                      first configured connection
  sqlpane ./app.db
  sqlpane postgres://me@localhost/shop
  sqlpane serve --listen :2222`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return runTUI(rt, target)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.close()
		},
	}
	root.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "config file (default $"+config.EnvConfig+" or the user config dir)")

	root.AddCommand(cli.Commands(rt.cliEnv)...)
	root.AddCommand(newServeCommand(rt), newVersionCommand(rt))
	return root
}

func newVersionCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "sqlpane %s\n", version)
			fmt.Fprintf(w, "  commit:    %s\n", commit)
			fmt.Fprintf(w, "  built:     %s\n", buildDate)
			fmt.Fprintf(w, "  config:    %s\n", cfg.Path())
			fmt.Fprintf(w, "  data:      %s\n", cfg.GetDataDir())
			fmt.Fprintf(w, "  exports:   %s\n", cfg.GetExportDir())
			fmt.Fprintf(w, "  favorites: %s\n", cfg.GetFavoritesDir())
			return nil
		},
	}
}

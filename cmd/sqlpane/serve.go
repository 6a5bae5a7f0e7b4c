package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johan-st/sqlpane/internal/cli"
	"github.com/johan-st/sqlpane/internal/server"
	"github.com/johan-st/sqlpane/internal/tui"
)

func newServeCommand(rt *runtime) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the UI and commands over SSH",
		Long: "Serve the UI over SSH. Clients authenticate with the public keys listed\n" +
			"in the config file, or anonymously when anonymous_access allows it.\n\n" +
			"  ssh -t -p 2222 host                 UI on the first connection\n" +
			"  ssh -t -p 2222 host open <name>     UI on a named connection\n" +
			"  ssh -p 2222 host query <name> SQL   one-shot command",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.open(os.Stderr); err != nil {
				return err
			}
			if rt.history == nil {
				return errors.New("serve needs the history store")
			}
			if listen != "" {
				rt.cfg.Server.Listen = listen
			}

			keys, err := keymapFromConfig(rt.cfg)
			if err != nil {
				return err
			}
			tick, frame := rt.cfg.Rates()

			hub := tui.NewHub()
			rt.watch(hub)

			srv := server.NewServer(rt.cfg, rt.history.GenerateAnonymousName)
			srv.SetTUIHandler(tui.Handler(tui.Options{
				Manager:   rt.manager,
				History:   rt.history,
				Favorites: rt.favorites,
				Hub:       hub,
				Keymap:    keys,
				TickRate:  tick,
				FrameRate: frame,
			}))
			srv.SetCLIHandler(cli.SSHHandler(cli.Env{
				Manager: rt.manager,
				History: rt.history,
				Version: version,
			}))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	return cmd
}

// Package cli implements the one-shot commands, for the local binary and
// for SSH sessions that run a command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/spf13/cobra"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/config"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/history"
	"github.com/johan-st/sqlpane/internal/server"
)

// Env is what a command runs against.
type Env struct {
	Manager *database.Manager
	User    *access.UserInfo
	History *history.Store   // optional
	Session *history.Session // required when History is set
	Version string

	// Config lets commands open URLs and file paths that are not
	// configured connections. It is nil over SSH.
	Config *config.Config
}

// EnvFunc returns the environment when a command runs, so the local binary
// can load configuration after flags are parsed.
type EnvFunc func() (*Env, error)

// connection returns the manager name for a connection argument.
func (e *Env) connection(arg string) (string, error) {
	if e.Config == nil {
		if e.Manager.GetAccessLevel(e.User, arg) == access.None {
			return "", fmt.Errorf("%w: no connection %q", errDenied, arg)
		}
		return arg, nil
	}
	c, err := e.Config.ResolveConnection(arg)
	if err != nil {
		return "", err
	}
	if e.Manager.GetAccessLevel(e.User, c.Name) == access.None {
		e.Manager.Add(c)
	}
	return c.Name, nil
}

// record appends an executed query to the user's history.
func (e *Env) record(ctx context.Context, conn, query string, grid *database.Grid, err error) {
	if e.History == nil || e.Session == nil {
		return
	}
	entry := history.Entry{Connection: conn, Query: query}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Duration = grid.Duration
		entry.Rows = grid.RowsAffected
		if grid.IsSelect {
			entry.Rows = int64(len(grid.Rows))
		}
	}
	if _, rerr := e.History.RecordQuery(ctx, e.Session, entry); rerr != nil {
		log.Warn("failed to record query", "err", rerr)
	}
}

// Commands returns the one-shot commands.
func Commands(env EnvFunc) []*cobra.Command {
	return []*cobra.Command{
		newQueryCommand(env),
		newTablesCommand(env),
		newDescribeCommand(env),
		newConnectionsCommand(env),
		newHistoryCommand(env),
		newWhoamiCommand(env),
	}
}

// NewCommand returns the command tree served to SSH clients.
func NewCommand(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "sqlpane",
		Short:         "Query databases over SSH",
		Long:          "Query databases over SSH.\n\nRun without a command (ssh -t) for the interactive UI, or use open <connection>.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	fn := func() (*Env, error) { return env, nil }
	root.AddCommand(Commands(fn)...)
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlpane %s\n", env.Version)
		},
	})
	return root
}

// SSHHandler runs the command an SSH client sent. Each session gets its own
// history session.
func SSHHandler(base Env) ssh.Handler {
	return func(s ssh.Session) {
		env := base
		env.Config = nil
		env.User = server.UserFromSession(s)

		if env.History != nil {
			env.Session = history.NewSession(env.User, s.RemoteAddr().String())
			if err := env.History.CreateSession(s.Context(), env.Session); err != nil {
				log.Warn("failed to record session", "err", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := env.History.EndSession(ctx, env.Session.ID); err != nil {
					log.Warn("failed to end session", "err", err)
				}
			}()
		}

		root := NewCommand(&env)
		root.SetArgs(s.Command())
		root.SetIn(s)
		root.SetOut(s)
		root.SetErr(s.Stderr())

		if err := root.ExecuteContext(s.Context()); err != nil {
			fmt.Fprintf(s.Stderr(), "Error: %v\n", err)
			_ = s.Exit(exitCode(err))
			return
		}
		_ = s.Exit(0)
	}
}

// errDenied marks access failures, which exit with status 2.
var errDenied = errors.New("access denied")

func exitCode(err error) int {
	if errors.Is(err, errDenied) || errors.Is(err, database.ErrWriteDenied) {
		return 2
	}
	return 1
}

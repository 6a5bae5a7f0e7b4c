// Package server serves the UI and the one-shot commands over SSH.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/johan-st/sqlpane/internal/config"
)

// OpenCommand is the session command that starts the UI on a named
// connection: ssh -t host open <connection>.
const OpenCommand = "open"

// Server is the SSH server.
type Server struct {
	config    *config.Config
	auth      *Authenticator
	sshServer *ssh.Server
	tui       bubbletea.Handler
	cli       ssh.Handler
}

// NewServer creates a server. names generates handles for anonymous users.
func NewServer(cfg *config.Config, names func() string) *Server {
	return &Server{
		config: cfg,
		auth:   NewAuthenticator(cfg, names),
	}
}

// SetTUIHandler sets the handler for interactive sessions.
func (s *Server) SetTUIHandler(h bubbletea.Handler) {
	s.tui = h
}

// SetCLIHandler sets the handler for sessions that run a command.
func (s *Server) SetCLIHandler(h ssh.Handler) {
	s.cli = h
}

func (s *Server) options() []ssh.Option {
	opts := []ssh.Option{
		wish.WithAddress(s.config.Server.Listen),
		wish.WithHostKeyPath(s.config.GetHostKeyPath()),
		wish.WithPublicKeyAuth(s.auth.PublicKeyHandler()),
		wish.WithIdleTimeout(s.config.GetIdleTimeout()),
		wish.WithMaxTimeout(s.config.GetMaxTimeout()),
		wish.WithMiddleware(
			s.routingMiddleware,
			LoggingMiddleware(),
		),
	}
	if h := s.auth.KeyboardInteractiveHandler(); h != nil {
		opts = append(opts, wish.WithKeyboardInteractiveAuth(h))
	}
	return opts
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.tui == nil {
		return errors.New("server: no TUI handler")
	}
	srv, err := wish.NewServer(s.options()...)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.sshServer = srv

	errCh := make(chan error, 1)
	go func() {
		log.Info("ssh server listening", "addr", s.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down ssh server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.config.Server.Listen
}

// routingMiddleware sends interactive sessions to the UI and commands to
// the command handler.
func (s *Server) routingMiddleware(next ssh.Handler) ssh.Handler {
	tui := bubbletea.Middleware(s.tui)(next)
	return func(sess ssh.Session) {
		_, _, hasPty := sess.Pty()
		cmd := sess.Command()

		if len(cmd) > 0 && cmd[0] != OpenCommand {
			if s.cli == nil {
				wish.Fatalln(sess, "commands are not supported")
				return
			}
			s.cli(sess)
			return
		}

		if !hasPty {
			wish.Fatalln(sess, "a PTY is required for the interactive UI; use ssh -t or run a command")
			return
		}
		tui(sess)
	}
}

// RemoteHost returns the host part of the session's remote address.
func RemoteHost(sess ssh.Session) string {
	host, _, err := net.SplitHostPort(sess.RemoteAddr().String())
	if err != nil {
		return sess.RemoteAddr().String()
	}
	return host
}

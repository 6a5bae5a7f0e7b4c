package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/johan-st/sqlpane/internal/server"
)

// Handler returns the bubbletea handler for SSH sessions. base supplies the
// shared parts of every session's options; user, connection and size come
// from the session. Remote sessions cannot copy or export, and anonymous
// users get no favorites.
func Handler(base Options) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		pty, _, ok := s.Pty()
		if !ok {
			return nil, nil
		}

		opts := base
		opts.User = server.UserFromSession(s)
		opts.RemoteAddr = s.RemoteAddr().String()
		opts.Width = pty.Window.Width
		opts.Height = pty.Window.Height
		opts.Clipboard = false
		opts.ExportDir = ""
		if opts.User.IsAnonymous {
			opts.Favorites = nil
		}

		opts.Connection = server.ConnectionFromSession(s)
		if opts.Connection == "" {
			conns := opts.Manager.ListConnections(opts.User)
			if len(conns) == 0 {
				wish.Fatalln(s, "no connections available")
				return nil, nil
			}
			opts.Connection = conns[0].Name
		}

		app, err := NewApp(opts)
		if err != nil {
			log.Warn("session refused", "user", opts.User.DisplayName(), "err", err)
			wish.Fatalln(s, err.Error())
			return nil, nil
		}
		go func() {
			<-s.Context().Done()
			app.Close()
		}()

		return app, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// LoggingMiddleware logs connections and how long they lasted.
func LoggingMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user := UserFromSession(s)
			start := time.Now()
			log.Info("connected", "user", user.DisplayName(), "remote", RemoteHost(s), "command", s.Command())

			next(s)

			log.Info("disconnected", "user", user.DisplayName(), "remote", RemoteHost(s), "duration", time.Since(start).Round(time.Second))
		}
	}
}

// ConnectionFromSession returns the connection named by "open <name>", or
// "" when the session did not name one.
func ConnectionFromSession(s ssh.Session) string {
	cmd := s.Command()
	if len(cmd) >= 2 && cmd[0] == OpenCommand {
		return cmd[1]
	}
	return ""
}

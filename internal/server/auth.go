package server

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/config"
)

const ctxKeyUser = "sqlpane.user"

// Authenticator decides who may open an SSH session.
type Authenticator struct {
	config *config.Config
	names  func() string
}

// NewAuthenticator creates an authenticator. names generates handles for
// anonymous users.
func NewAuthenticator(cfg *config.Config, names func() string) *Authenticator {
	return &Authenticator{config: cfg, names: names}
}

// PublicKeyHandler accepts keys listed for a configured user, and any key
// when anonymous access is allowed.
func (a *Authenticator) PublicKeyHandler() ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := FingerprintKey(key)
		if user := a.findUserByKey(fingerprint, key); user != nil {
			ctx.SetValue(ctxKeyUser, user)
			log.Info("authenticated", "user", user.Name, "remote", ctx.RemoteAddr())
			return true
		}

		if a.config.AllowsAnonymous() {
			user := a.anonymous(ctx)
			user.PublicKeyFP = fingerprint
			ctx.SetValue(ctxKeyUser, user)
			log.Info("anonymous access", "name", user.AnonymousName, "remote", ctx.RemoteAddr())
			return true
		}

		log.Warn("authentication failed", "key", fingerprint, "remote", ctx.RemoteAddr())
		return false
	}
}

// KeyboardInteractiveHandler lets clients without keys in as anonymous
// users. It is nil unless allow_keyless is set.
func (a *Authenticator) KeyboardInteractiveHandler() ssh.KeyboardInteractiveHandler {
	if !a.config.AllowKeyless {
		return nil
	}
	return func(ctx ssh.Context, _ gossh.KeyboardInteractiveChallenge) bool {
		user := a.anonymous(ctx)
		ctx.SetValue(ctxKeyUser, user)
		log.Info("anonymous keyboard-interactive access", "name", user.AnonymousName, "remote", ctx.RemoteAddr())
		return true
	}
}

func (a *Authenticator) anonymous(ctx ssh.Context) *access.UserInfo {
	return &access.UserInfo{
		IsAnonymous:   true,
		AnonymousName: a.names(),
		RemoteAddr:    ctx.RemoteAddr().String(),
	}
}

// findUserByKey matches key against the configured public keys, which may be
// authorized_keys lines or SHA256 fingerprints.
func (a *Authenticator) findUserByKey(fingerprint string, key ssh.PublicKey) *access.UserInfo {
	u := a.config.MatchUser(func(entry string) bool {
		entry = strings.TrimSpace(entry)
		if entry == fingerprint {
			return true
		}
		parsed, _, _, _, err := ssh.ParseAuthorizedKey([]byte(entry))
		if err != nil {
			return false
		}
		return ssh.KeysEqual(parsed, key)
	})
	if u == nil {
		return nil
	}
	return &access.UserInfo{
		Name:        u.Name,
		IsAdmin:     u.Admin,
		PublicKeyFP: fingerprint,
	}
}

// UserFromSession returns the user the session authenticated as.
func UserFromSession(s ssh.Session) *access.UserInfo {
	if user, ok := s.Context().Value(ctxKeyUser).(*access.UserInfo); ok {
		user.RemoteAddr = s.RemoteAddr().String()
		return user
	}
	return &access.UserInfo{
		IsAnonymous: true,
		RemoteAddr:  s.RemoteAddr().String(),
	}
}

// FingerprintKey returns the SHA256 fingerprint of a public key.
func FingerprintKey(key ssh.PublicKey) string {
	return gossh.FingerprintSHA256(key)
}

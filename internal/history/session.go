package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/johan-st/sqlpane/internal/access"
)

// Session is one running UI, local or over SSH.
type Session struct {
	ID                   string
	UserName             string // authenticated username or empty
	PublicKeyFingerprint string
	AnonymousName        string
	RemoteAddr           string
	CreatedAt            time.Time
	LastActiveAt         time.Time
	IsActive             bool
}

// NewSession creates a session with a fresh id for user.
func NewSession(user *access.UserInfo, remoteAddr string) *Session {
	now := time.Now()
	s := &Session{
		ID:           uuid.New().String(),
		RemoteAddr:   remoteAddr,
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}

	if user != nil {
		if user.IsAnonymous {
			s.AnonymousName = user.AnonymousName
		} else {
			s.UserName = user.Name
			s.PublicKeyFingerprint = user.PublicKeyFP
		}
	}
	return s
}

// DisplayName returns the name shown for the session.
func (s *Session) DisplayName() string {
	if s.UserName != "" {
		return s.UserName
	}
	if s.AnonymousName != "" {
		return s.AnonymousName
	}
	return "unknown"
}

// Entry is one executed query.
type Entry struct {
	ID         int64
	SessionID  string
	Connection string
	Query      string
	Duration   time.Duration
	Rows       int64 // rows returned or affected
	Error      string
	CreatedAt  time.Time
}

// Failed reports whether the query returned an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

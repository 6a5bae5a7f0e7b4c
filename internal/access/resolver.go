package access

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule grants a level on every connection whose name matches Pattern.
type Rule struct {
	Pattern string
	Level   Level
}

// Resolver resolves access levels for users and connections.
type Resolver struct {
	// Level for anonymous users when no public rule matches
	AnonymousAccess Level

	// Rules that apply to everyone
	PublicRules []Rule

	// Rules keyed by username
	UserRules map[string][]Rule

	Admins map[string]bool
}

// NewResolver returns a resolver that grants nothing.
func NewResolver() *Resolver {
	return &Resolver{
		AnonymousAccess: None,
		UserRules:       make(map[string][]Rule),
		Admins:          make(map[string]bool),
	}
}

// AddAdmin marks a user as admin.
func (r *Resolver) AddAdmin(username string) {
	r.Admins[username] = true
}

// AddPublicRule adds a rule for everyone.
func (r *Resolver) AddPublicRule(pattern string, level Level) {
	r.PublicRules = append(r.PublicRules, Rule{Pattern: pattern, Level: level})
}

// AddUserRule adds a rule for one user.
func (r *Resolver) AddUserRule(username, pattern string, level Level) {
	r.UserRules[username] = append(r.UserRules[username], Rule{Pattern: pattern, Level: level})
}

// Resolve returns the level of user on the named connection: admin, then
// the user's own rules, then public rules, then the anonymous level.
func (r *Resolver) Resolve(user *UserInfo, connection string) Level {
	if user != nil && user.IsAdmin {
		return Admin
	}
	if user != nil && !user.IsAnonymous && r.Admins[user.Name] {
		return Admin
	}

	if user != nil && !user.IsAnonymous {
		if level := matchRules(r.UserRules[user.Name], connection); level != None {
			return level
		}
	}

	if level := matchRules(r.PublicRules, connection); level != None {
		return level
	}

	return r.AnonymousAccess
}

// matchRules returns the level of the first matching rule.
func matchRules(rules []Rule, connection string) Level {
	for _, rule := range rules {
		if matchPattern(rule.Pattern, connection) {
			return rule.Level
		}
	}
	return None
}

func matchPattern(pattern, connection string) bool {
	pattern = strings.TrimSpace(pattern)
	connection = strings.TrimSpace(connection)
	if pattern == connection {
		return true
	}
	matched, _ := doublestar.Match(pattern, connection)
	return matched
}

// Filter returns the connections user can read, with their levels.
func (r *Resolver) Filter(user *UserInfo, connections []string) map[string]Level {
	out := make(map[string]Level)
	for _, c := range connections {
		if level := r.Resolve(user, c); level.CanRead() {
			out[c] = level
		}
	}
	return out
}

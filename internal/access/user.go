package access

// UserInfo identifies whoever is driving a UI session.
type UserInfo struct {
	Name          string
	IsAdmin       bool
	PublicKeyFP   string // SSH public key fingerprint
	IsAnonymous   bool
	AnonymousName string // generated handle for anonymous SSH users
	RemoteAddr    string
}

// Local is the user of a UI running in the local terminal.
func Local() *UserInfo {
	return &UserInfo{Name: "local", IsAdmin: true}
}

// DisplayName returns the name to show for the user.
func (u *UserInfo) DisplayName() string {
	if u == nil {
		return "unknown"
	}
	if u.IsAnonymous {
		if u.AnonymousName != "" {
			return u.AnonymousName
		}
		return "anonymous@" + u.RemoteAddr
	}
	return u.Name
}

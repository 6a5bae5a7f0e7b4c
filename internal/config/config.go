// Package config handles configuration file parsing and hot-reloading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/johan-st/sqlpane/internal/access"
)

// Environment overrides.
const (
	EnvConfig    = "SQLPANE_CONFIG"
	EnvData      = "SQLPANE_DATA"
	EnvExport    = "SQLPANE_EXPORT"
	EnvFavorites = "SQLPANE_FAVORITES"
	EnvLogLevel  = "SQLPANE_LOGLEVEL"
)

const appName = "sqlpane"

// Config represents the application configuration.
type Config struct {
	// Hz
	TickRate  float64 `yaml:"tick_rate"`
	FrameRate float64 `yaml:"frame_rate"`

	Connections []Connection `yaml:"connections"`

	// region -> key sequence -> action name
	Keybindings map[string]map[string]string `yaml:"keybindings"`

	DataDir      string `yaml:"data_dir"`
	ExportDir    string `yaml:"export_dir"`
	FavoritesDir string `yaml:"favorites_dir"`

	Server ServerConfig `yaml:"server"`

	// Access level for anonymous SSH users (none, read-only, read-write)
	AnonymousAccess string `yaml:"anonymous_access"`

	// Allow keyless SSH connections
	AllowKeyless bool `yaml:"allow_keyless"`

	Users  []User             `yaml:"users"`
	Public []PublicConnection `yaml:"public"`

	// Internal: path to the config file
	path string

	mu sync.RWMutex
}

// Connection is a named database URL.
type Connection struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	ReadOnly    bool   `yaml:"read_only"`
}

// ServerConfig contains SSH server configuration.
type ServerConfig struct {
	Listen      string `yaml:"listen"`
	HostKeyPath string `yaml:"host_key_path"`
	IdleTimeout string `yaml:"idle_timeout"`
	MaxTimeout  string `yaml:"max_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TickRate:  4,
		FrameRate: 30,
		Server: ServerConfig{
			Listen:      ":2222",
			IdleTimeout: "30m",
			MaxTimeout:  "24h",
		},
		AnonymousAccess: "none",
	}
}

// DefaultPath returns $SQLPANE_CONFIG or <user config dir>/sqlpane/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+appName, "config.yaml")
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// Load reads and parses a configuration file. An empty path loads the
// default path, where a missing file yields the defaults.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	cfg := DefaultConfig()
	cfg.path = absPath

	data, err := os.ReadFile(absPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		c.TickRate = DefaultConfig().TickRate
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultConfig().FrameRate
	}

	seen := make(map[string]bool)
	for i, conn := range c.Connections {
		if conn.Name == "" {
			return fmt.Errorf("connection %d: missing name", i+1)
		}
		if conn.URL == "" {
			return fmt.Errorf("connection %q: missing url", conn.Name)
		}
		if seen[conn.Name] {
			return fmt.Errorf("connection %q: duplicate name", conn.Name)
		}
		seen[conn.Name] = true
	}
	return nil
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Reload reloads the configuration from disk.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newCfg := DefaultConfig()
	if err := yaml.Unmarshal(data, newCfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := newCfg.validate(); err != nil {
		return err
	}

	c.TickRate = newCfg.TickRate
	c.FrameRate = newCfg.FrameRate
	c.Connections = newCfg.Connections
	c.Keybindings = newCfg.Keybindings
	c.DataDir = newCfg.DataDir
	c.ExportDir = newCfg.ExportDir
	c.FavoritesDir = newCfg.FavoritesDir
	c.Server = newCfg.Server
	c.AnonymousAccess = newCfg.AnonymousAccess
	c.AllowKeyless = newCfg.AllowKeyless
	c.Users = newCfg.Users
	c.Public = newCfg.Public

	return nil
}

// Bindings returns a copy of the configured keybindings.
func (c *Config) Bindings() map[string]map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]string, len(c.Keybindings))
	for region, m := range c.Keybindings {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[region] = cp
	}
	return out
}

// Rates returns the tick and frame intervals.
func (c *Config) Rates() (tick, frame time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return hz(c.TickRate), hz(c.FrameRate)
}

func hz(rate float64) time.Duration {
	return time.Duration(float64(time.Second) / rate)
}

// ConnectionNames lists the configured connection names in config order.
func (c *Config) ConnectionNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.Connections))
	for i, conn := range c.Connections {
		names[i] = conn.Name
	}
	return names
}

// ResolveConnection returns the configured connection called nameOrURL.
// Anything else is taken as an ad hoc URL or SQLite file path.
func (c *Config) ResolveConnection(nameOrURL string) (Connection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if nameOrURL == "" {
		if len(c.Connections) == 0 {
			return Connection{}, fmt.Errorf("no connection given and none configured")
		}
		return c.Connections[0], nil
	}
	for _, conn := range c.Connections {
		if conn.Name == nameOrURL {
			return conn, nil
		}
	}

	if !strings.Contains(nameOrURL, "://") && !strings.HasPrefix(nameOrURL, "file:") {
		if _, err := os.Stat(nameOrURL); err != nil {
			return Connection{}, fmt.Errorf("unknown connection %q", nameOrURL)
		}
	}
	return Connection{Name: adHocName(nameOrURL), URL: nameOrURL}, nil
}

// adHocName derives a display name from a URL without credentials.
func adHocName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		return filepath.Base(strings.TrimPrefix(raw, "file:"))
	}
	name := u.Host
	if db := strings.Trim(u.Path, "/"); db != "" {
		name += "/" + filepath.Base(db)
	}
	if name == "" {
		name = filepath.Base(u.Opaque)
	}
	return name
}

// BuildResolver creates an access.Resolver from the configuration.
func (c *Config) BuildResolver() *access.Resolver {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resolver := access.NewResolver()
	resolver.AnonymousAccess = access.ParseLevel(c.AnonymousAccess)

	for _, pub := range c.Public {
		resolver.AddPublicRule(pub.Pattern, access.ParseLevel(pub.Level))
	}

	for _, user := range c.Users {
		if user.Admin {
			resolver.AddAdmin(user.Name)
		}
		for _, rule := range user.Access {
			resolver.AddUserRule(user.Name, rule.Pattern, access.ParseLevel(rule.Level))
		}
	}

	return resolver
}

// FindUserByPublicKey finds a user by their SSH public key fingerprint.
func (c *Config) FindUserByPublicKey(keyFingerprint string) *User {
	return c.MatchUser(func(key string) bool { return key == keyFingerprint })
}

// MatchUser returns a copy of the first user with a public_keys entry for
// which match reports true.
func (c *Config) MatchUser(match func(key string) bool) *User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.Users {
		for _, key := range c.Users[i].PublicKeys {
			if match(key) {
				u := c.Users[i]
				return &u
			}
		}
	}
	return nil
}

// AllowsAnonymous reports whether SSH clients without a known key may log in.
func (c *Config) AllowsAnonymous() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AllowKeyless || access.ParseLevel(c.AnonymousAccess) != access.None
}

// GetIdleTimeout parses and returns the idle timeout duration.
func (c *Config) GetIdleTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// GetMaxTimeout parses and returns the max timeout duration.
func (c *Config) GetMaxTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, err := time.ParseDuration(c.Server.MaxTimeout)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

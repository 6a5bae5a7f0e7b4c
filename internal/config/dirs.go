package config

import (
	"os"
	"path/filepath"
)

// GetDataDir returns the directory for history, logs and the SSH host key.
func (c *Config) GetDataDir() string {
	return c.dir(EnvData, func(c *Config) string { return c.DataDir }, func() string {
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, appName)
		}
		return "." + appName
	})
}

// GetExportDir returns the directory exports are written to.
func (c *Config) GetExportDir() string {
	return c.dir(EnvExport, func(c *Config) string { return c.ExportDir }, func() string {
		return filepath.Join(c.GetDataDir(), "exports")
	})
}

// GetFavoritesDir returns the directory holding favorite queries.
func (c *Config) GetFavoritesDir() string {
	return c.dir(EnvFavorites, func(c *Config) string { return c.FavoritesDir }, func() string {
		return filepath.Join(c.GetDataDir(), "favorites")
	})
}

// GetHostKeyPath returns the SSH host key path.
func (c *Config) GetHostKeyPath() string {
	c.mu.RLock()
	p := c.Server.HostKeyPath
	c.mu.RUnlock()
	if p != "" {
		return p
	}
	return filepath.Join(c.GetDataDir(), "host_key")
}

// dir picks the environment override, then the configured value, then the
// fallback.
func (c *Config) dir(env string, configured func(*Config) string, fallback func() string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	c.mu.RLock()
	v := configured(c)
	c.mu.RUnlock()
	if v != "" {
		return v
	}
	return fallback()
}

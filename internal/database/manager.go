package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/config"
)

// Manager manages named connections and who may use them.
type Manager struct {
	connections map[string]config.Connection
	adHoc       map[string]config.Connection
	order       []string
	open        map[string]*Connection
	resolver    *access.Resolver
	opts        OpenOptions
	mu          sync.RWMutex
}

// ConnectionInfo describes a connection for listing.
type ConnectionInfo struct {
	Name        string
	Description string
	Dialect     Dialect
	AccessLevel access.Level
}

// NewManager creates a manager for the connections in cfg.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		open:  make(map[string]*Connection),
		adHoc: make(map[string]config.Connection),
		opts:  DefaultOpenOptions(),
	}
	m.UpdateConfig(cfg)
	return m
}

// UpdateConfig replaces the connection list and access rules (called on
// config reload). Open pools of connections that still exist are kept.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	resolver := cfg.BuildResolver()
	conns := make(map[string]config.Connection)
	var order []string
	for _, name := range cfg.ConnectionNames() {
		c, err := cfg.ResolveConnection(name)
		if err != nil {
			continue
		}
		conns[name] = c
		order = append(order, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// connections given on the command line survive a reload
	for name, c := range m.adHoc {
		if _, ok := conns[name]; !ok {
			conns[name] = c
			order = append(order, name)
		}
	}
	m.connections = conns
	m.order = order
	m.resolver = resolver
}

const adHocDescription = "command line"

// Add registers a connection that is not in the config file.
func (m *Manager) Add(c config.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Description == "" {
		c.Description = adHocDescription
	}
	if _, ok := m.connections[c.Name]; !ok {
		m.order = append(m.order, c.Name)
	}
	m.connections[c.Name] = c
	m.adHoc[c.Name] = c
}

// ListConnections returns the connections user may read.
func (m *Manager) ListConnections(user *access.UserInfo) []ConnectionInfo {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	var out []ConnectionInfo
	for _, name := range names {
		level := m.GetAccessLevel(user, name)
		if !level.CanRead() {
			continue
		}
		m.mu.RLock()
		c := m.connections[name]
		m.mu.RUnlock()
		dialect, _, _, _ := ParseURL(c.URL, m.opts)
		out = append(out, ConnectionInfo{
			Name:        name,
			Description: c.Description,
			Dialect:     dialect,
			AccessLevel: level,
		})
	}
	return out
}

// GetAccessLevel returns the access level of user on a connection.
// Connections configured read_only never allow writes.
func (m *Manager) GetAccessLevel(user *access.UserInfo, name string) access.Level {
	m.mu.RLock()
	c, ok := m.connections[name]
	resolver := m.resolver
	m.mu.RUnlock()
	if !ok {
		return access.None
	}

	return resolver.Resolve(user, name).Cap(c.ReadOnly)
}

// OpenConnection opens or returns the pool for a connection. Users without
// write access get a separate read-only pool.
func (m *Manager) OpenConnection(ctx context.Context, name string, user *access.UserInfo) (*Connection, error) {
	m.mu.RLock()
	c, ok := m.connections[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("connection not found: %s", name)
	}

	level := m.GetAccessLevel(user, name)
	if !level.CanRead() {
		return nil, fmt.Errorf("access denied to connection: %s", name)
	}

	key := name + "\x00rw"
	if !level.CanWrite() {
		key = name + "\x00ro"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.open[key]; ok {
		return conn, nil
	}

	opts := m.opts
	opts.ReadOnly = !level.CanWrite()

	conn, err := Open(ctx, name, c.URL, opts)
	if err != nil {
		return nil, err
	}
	log.Info("connection opened", "name", name, "dialect", conn.Dialect, "read_only", opts.ReadOnly)

	m.open[key] = conn
	return conn, nil
}

// Execute runs a query on a connection on behalf of user.
func (m *Manager) Execute(ctx context.Context, name string, user *access.UserInfo, query string) (*Grid, error) {
	level := m.GetAccessLevel(user, name)
	if !IsReadOnly(query) && !level.CanWrite() {
		return nil, ErrWriteDenied
	}

	conn, err := m.OpenConnection(ctx, name, user)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, conn, query)
}

// ExecuteRaw sends query to the connection as a single statement, without
// splitting it. Write access is still checked.
func (m *Manager) ExecuteRaw(ctx context.Context, name string, user *access.UserInfo, query string) (*Grid, error) {
	level := m.GetAccessLevel(user, name)
	if !IsReadOnly(query) && !level.CanWrite() {
		return nil, ErrWriteDenied
	}

	conn, err := m.OpenConnection(ctx, name, user)
	if err != nil {
		return nil, err
	}
	return ExecuteRaw(ctx, conn, query)
}

// Close closes every open pool.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, conn := range m.open {
		if err := conn.Close(); err != nil {
			log.Warn("failed to close connection", "name", conn.Name, "err", err)
		}
		delete(m.open, key)
	}
}

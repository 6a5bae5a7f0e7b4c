package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/cli"
	"github.com/johan-st/sqlpane/internal/config"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/favorites"
	"github.com/johan-st/sqlpane/internal/history"
	"github.com/johan-st/sqlpane/internal/keymap"
	"github.com/johan-st/sqlpane/internal/logging"
	"github.com/johan-st/sqlpane/internal/tui"
)

// runtime holds what every mode opens: configuration, connections and the
// history and favorites stores. Stores that fail to open are left nil.
type runtime struct {
	configPath string

	cfg       *config.Config
	manager   *database.Manager
	history   *history.Store
	favorites *favorites.Store
	closers   []func()
}

// open loads the configuration and opens the stores, logging to w.
func (rt *runtime) open(w io.Writer) error {
	if rt.cfg != nil {
		return nil
	}
	if _, err := logging.New(w, os.Getenv(config.EnvLogLevel)); err != nil {
		return err
	}

	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.manager = database.NewManager(cfg)
	rt.closers = append(rt.closers, rt.manager.Close)

	if store, err := history.NewStore(cfg.GetDataDir()); err != nil {
		log.Warn("history disabled", "err", err)
	} else {
		rt.history = store
		rt.closers = append(rt.closers, func() { store.Close() })
	}

	if store, err := favorites.NewStore(cfg.GetFavoritesDir()); err != nil {
		log.Warn("favorites disabled", "err", err)
	} else {
		rt.favorites = store
	}
	return nil
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// cliEnv opens the runtime for a one-shot command, logging to stderr.
func (rt *runtime) cliEnv() (*cli.Env, error) {
	if err := rt.open(os.Stderr); err != nil {
		return nil, err
	}
	user := access.Local()
	env := &cli.Env{
		Manager: rt.manager,
		User:    user,
		History: rt.history,
		Version: version,
		Config:  rt.cfg,
	}
	if rt.history != nil {
		env.Session = rt.session(user, "")
	}
	return env, nil
}

// session records a history session that ends when the runtime closes.
func (rt *runtime) session(user *access.UserInfo, remoteAddr string) *history.Session {
	s := history.NewSession(user, remoteAddr)
	if err := rt.history.CreateSession(context.Background(), s); err != nil {
		log.Warn("failed to record session", "err", err)
	}
	// runs before the store closes
	rt.closers = append(rt.closers, func() {
		if err := rt.history.EndSession(context.Background(), s.ID); err != nil {
			log.Warn("failed to end session", "err", err)
		}
	})
	return s
}

// keymapFromConfig returns the default key map with the configured
// bindings applied on top.
func keymapFromConfig(cfg *config.Config) (*keymap.Map, error) {
	custom, err := keymap.FromConfig(cfg.Bindings())
	if err != nil {
		return nil, err
	}
	return keymap.Default().Merge(custom), nil
}

// watch pushes config and favorites changes into the hub's UIs.
func (rt *runtime) watch(hub *tui.Hub) {
	cw, err := config.NewWatcher(rt.cfg)
	if err != nil {
		log.Warn("config watcher disabled", "err", err)
	} else {
		cw.OnReload(func(c *config.Config) {
			rt.manager.UpdateConfig(c)
			km, err := keymapFromConfig(c)
			if err != nil {
				log.Warn("keybindings not reloaded", "err", err)
				return
			}
			hub.SetKeymap(km)
			log.Info("config reloaded", "uis", hub.Len())
		})
		if err := cw.Start(); err != nil {
			log.Warn("config watcher disabled", "err", err)
		} else {
			rt.closers = append(rt.closers, cw.Stop)
		}
	}

	if rt.favorites == nil {
		return
	}
	store := rt.favorites
	fw, err := favorites.NewWatcher(store, func() {
		favs, err := store.List()
		hub.FavoritesChanged(favs, err)
	})
	if err != nil {
		log.Warn("favorites watcher disabled", "err", err)
		return
	}
	rt.closers = append(rt.closers, fw.Stop)
}

package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/config"
	"github.com/johan-st/sqlpane/internal/logging"
	"github.com/johan-st/sqlpane/internal/tui"
)

// runTUI runs the interactive UI on target, logging to the data directory.
func runTUI(rt *runtime, target string) error {
	if err := rt.open(os.Stderr); err != nil {
		return err
	}
	f, err := logging.OpenFile(rt.cfg.GetDataDir())
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := logging.New(f, os.Getenv(config.EnvLogLevel)); err != nil {
		return err
	}

	conn, err := rt.cfg.ResolveConnection(target)
	if err != nil {
		return err
	}
	user := access.Local()
	if rt.manager.GetAccessLevel(user, conn.Name) == access.None {
		rt.manager.Add(conn)
	}

	keys, err := keymapFromConfig(rt.cfg)
	if err != nil {
		return err
	}
	tick, frame := rt.cfg.Rates()

	width, height := 80, 24
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	hub := tui.NewHub()
	rt.watch(hub)

	opts := tui.Options{
		Manager:    rt.manager,
		Connection: conn.Name,
		User:       user,
		History:    rt.history,
		Favorites:  rt.favorites,
		Hub:        hub,
		Keymap:     keys,
		ExportDir:  rt.cfg.GetExportDir(),
		TickRate:   tick,
		FrameRate:  frame,
		Clipboard:  true,
		Width:      width,
		Height:     height,
	}
	app, err := tui.NewApp(opts)
	if err != nil {
		return err
	}
	log.Info("ui started", "connection", conn.Name)

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	app.Close()
	if err != nil {
		return err
	}
	return app.Err()
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"PulseBeacon/internal/catalog"
	"PulseBeacon/internal/config"
	"PulseBeacon/internal/game"
	"PulseBeacon/internal/notifier"
	"PulseBeacon/internal/store"
	"PulseBeacon/internal/tracker"
)

// app is the wired object graph shared by every command.
type app struct {
	store   store.Store
	game    *game.Manager
	tracker *tracker.Tracker
	loc     *time.Location
}

func openApp(n notifier.Notifier) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}

	statePath := cfg.Game.StateFile
	if statePath == config.MemoryPath {
		statePath = ""
	}
	gm, err := game.NewManager(statePath, logger, time.Now().In(loc))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init game manager: %w", err)
	}

	catalogue, err := catalog.LoadAchievements(cfg.Catalogue.AchievementsFile)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load achievement catalogue: %w", err)
	}

	tr, err := tracker.New(st, gm, n, catalogue, loc, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init tracker: %w", err)
	}
	return &app{store: st, game: gm, tracker: tr, loc: loc}, nil
}

func openStore(path string) (store.Store, error) {
	if path == config.MemoryPath {
		logger.Warn("sqlite disabled, readings kept in memory only")
		return store.NewMemoryStore(), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	return st, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("close store", zap.Error(err))
	}
}

// cliApp opens the app with notifications printed to w.
func cliApp(w io.Writer) (*app, error) {
	return openApp(notifier.NewWriterNotifier(w))
}

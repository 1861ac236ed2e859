package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/decodeur/internal/audio"
	"github.com/verte-zerg/decodeur/internal/catalog"
	"github.com/verte-zerg/decodeur/internal/config"
	"github.com/verte-zerg/decodeur/internal/logging"
	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/store"
)

// app bundles the resources shared by the commands.
type app struct {
	fileCfg config.FileConfig
	logger  *logrus.Logger
	logFile io.Closer
	store   *store.Store
}

func openApp() (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, logFile, err := logging.New(logging.Options{
		Level:  config.StringOr(fileCfg.Log.Level, "info"),
		Format: config.StringOr(fileCfg.Log.Format, "text"),
		File:   config.StringOr(fileCfg.Log.File, config.DefaultLogPath()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	st, err := store.Open(config.DefaultDBPath(), logger)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &app{fileCfg: fileCfg, logger: logger, logFile: logFile, store: st}, nil
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	if cerr := a.logFile.Close(); cerr != nil {
		logErrf("failed to close log file: %v\n", cerr)
	}
}

func (a *app) notifier(prefs model.Preferences) audio.Notifier {
	return audio.New(prefs, audio.Config{
		SpeechCommand: config.StringOr(a.fileCfg.Audio.SpeechCommand, ""),
		Bell:          config.BoolOr(a.fileCfg.Audio.Bell, true),
	}, a.logger)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return cat, nil
}

func emotionNames(cat *catalog.Catalog) map[string]string {
	names := map[string]string{}
	for _, e := range cat.All() {
		names[e.ID] = e.Name
	}
	return names
}

package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/secrets"
	"taskdeck/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogPath)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := secrets.Open(cfg.SecretsPath)
	if err != nil {
		logger.Error("failed to open secret store", zap.Error(err))
		fmt.Printf("failed to open secret store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	token, err := store.LoadToken()
	if err != nil {
		logger.Warn("failed to read stored token", zap.Error(err))
		token = ""
	}

	client := api.NewClient(cfg.ServerURL, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)

	logger.Info("starting",
		zap.String("server_url", cfg.ServerURL),
		zap.String("config", configPath),
		zap.Bool("has_token", token != ""),
	)
	if err := ui.Run(client, store, cfg, token); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to the configured file; logging to the terminal would
// corrupt the TUI.
func newLogger(path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/app"
	"github.com/nhle/mailmind/internal/backend"
	"github.com/nhle/mailmind/internal/cache"
	"github.com/nhle/mailmind/internal/credential"
	"github.com/nhle/mailmind/internal/logging"
	"github.com/nhle/mailmind/internal/model"
)

func main() {
	configPathFlag := flag.String("config", "", "Path to YAML configuration file (default: ~/.config/mailmind/config.yaml)")
	flag.Parse()

	if err := run(configPath(*configPathFlag)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath returns the configuration file path: the flag, then
// MAILMIND_CONFIG, then the default location.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("MAILMIND_CONFIG"); env != "" {
		return env
	}
	return model.DefaultConfigPath()
}

func run(path string) error {
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts := app.Options{
		Config:     cfg,
		ConfigPath: path,
		Backend:    backend.NewClient(cfg.Backend, log),
		Logger:     log,
	}

	if cfg.Cache.Enabled {
		c, err := cache.NewSQLiteCache(cfg.Cache.Path)
		if err != nil {
			log.Warn("cache disabled", zap.Error(err))
		} else {
			defer c.Close()
			opts.Cache = c
		}
	}

	creds, err := credential.Open()
	if err != nil {
		log.Warn("keyring unavailable, IMAP import disabled", zap.Error(err))
	} else {
		opts.Credentials = creds
	}

	log.Info("starting", zap.String("config", path), zap.String("backend", cfg.Backend.BaseURL))
	p := tea.NewProgram(app.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig holds settings for the remote classification/generation
// service.
type BackendConfig struct {
	// BaseURL is the root URL of the backend API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// MaxRetries is the number of extra attempts for idempotent reads.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// RetryBackoff is multiplied by the attempt number between retries.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`
}

// ComposeConfig holds settings for the compose view.
type ComposeConfig struct {
	// RevealInterval is the cadence of the progressive-typing effect.
	RevealInterval time.Duration `mapstructure:"reveal_interval" yaml:"reveal_interval"`
}

// RefreshConfig controls periodic inbox reloads. Zero disables them.
type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// CacheConfig controls the local snapshot cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// IMAPConfig holds the mailbox used by the IMAP import command. The
// password lives in the system keyring, never in the config file.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Limit    int    `mapstructure:"limit" yaml:"limit"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Compose ComposeConfig `mapstructure:"compose" yaml:"compose"`
	Refresh RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	IMAP    IMAPConfig    `mapstructure:"imap" yaml:"imap"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns ~/.config/mailmind, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailmind")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailmind/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:      "http://localhost:8000",
			Timeout:      30 * time.Second,
			MaxRetries:   2,
			RetryBackoff: time.Second,
		},
		Compose: ComposeConfig{
			RevealInterval: 18 * time.Millisecond,
		},
		Refresh: RefreshConfig{
			Interval: 0,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(ConfigDir(), "cache.db"),
		},
		IMAP: IMAPConfig{
			Port:  "993",
			TLS:   true,
			Limit: 50,
		},
		Log: LogConfig{
			Path:  filepath.Join(ConfigDir(), "mailmind.log"),
			Level: "info",
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// setDefaults registers every default so missing keys (and environment
// overrides for keys absent from the file) resolve correctly.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.max_retries", d.Backend.MaxRetries)
	v.SetDefault("backend.retry_backoff", d.Backend.RetryBackoff)
	v.SetDefault("compose.reveal_interval", d.Compose.RevealInterval)
	v.SetDefault("refresh.interval", d.Refresh.Interval)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("imap.host", d.IMAP.Host)
	v.SetDefault("imap.port", d.IMAP.Port)
	v.SetDefault("imap.username", d.IMAP.Username)
	v.SetDefault("imap.tls", d.IMAP.TLS)
	v.SetDefault("imap.limit", d.IMAP.Limit)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("display.theme", d.Display.Theme)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with MAILMIND_ override file values
// (e.g. MAILMIND_BACKEND_BASE_URL). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.MaxRetries < 0 {
		cfg.Backend.MaxRetries = 0
	}
	if cfg.Compose.RevealInterval <= 0 {
		cfg.Compose.RevealInterval = DefaultAppConfig().Compose.RevealInterval
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", map[string]interface{}{
		"base_url":      cfg.Backend.BaseURL,
		"timeout":       cfg.Backend.Timeout.String(),
		"max_retries":   cfg.Backend.MaxRetries,
		"retry_backoff": cfg.Backend.RetryBackoff.String(),
	})
	v.Set("compose", map[string]interface{}{
		"reveal_interval": cfg.Compose.RevealInterval.String(),
	})
	v.Set("refresh", map[string]interface{}{
		"interval": cfg.Refresh.Interval.String(),
	})
	v.Set("cache", map[string]interface{}{
		"enabled": cfg.Cache.Enabled,
		"path":    cfg.Cache.Path,
	})
	v.Set("imap", map[string]interface{}{
		"host":     cfg.IMAP.Host,
		"port":     cfg.IMAP.Port,
		"username": cfg.IMAP.Username,
		"tls":      cfg.IMAP.TLS,
		"limit":    cfg.IMAP.Limit,
	})
	v.Set("log", map[string]interface{}{
		"path":  cfg.Log.Path,
		"level": cfg.Log.Level,
	})
	v.Set("display", map[string]interface{}{
		"theme": cfg.Display.Theme,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

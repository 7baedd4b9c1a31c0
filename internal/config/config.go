package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "breathe"
	configFileName = "config.yaml"

	DefaultTickMS   = 100
	DefaultLogLevel = "info"

	minTickMS = 10
	maxTickMS = 1000
)

// Config holds the user-editable application settings.
type Config struct {
	DBPath   string
	LogFile  string
	LogLevel string
	TickMS   int
}

type yamlConfig struct {
	DBPath   string `yaml:"db_path,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	TickMS   int    `yaml:"tick_ms,omitempty"`
}

// Default returns the configuration used when no file exists. DBPath is
// left empty so the store picks its own default location.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		TickMS:   DefaultTickMS,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/breathe/config.yaml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load reads the config at path. A missing file yields Default(); values
// that are out of range are ignored and keep their defaults.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	apply(&cfg, raw)
	return cfg, nil
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(fs afero.Fs, path string, cfg Config) error {
	data, err := yaml.Marshal(yamlConfig{
		DBPath:   cfg.DBPath,
		LogFile:  cfg.LogFile,
		LogLevel: cfg.LogLevel,
		TickMS:   cfg.TickMS,
	})
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	return writeAtomic(fs, path, data)
}

func apply(cfg *Config, raw yamlConfig) {
	if p := strings.TrimSpace(raw.DBPath); p != "" {
		cfg.DBPath = p
	}
	if p := strings.TrimSpace(raw.LogFile); p != "" {
		cfg.LogFile = p
	}
	if _, ok := parseLevel(raw.LogLevel); ok {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if raw.TickMS >= minTickMS && raw.TickMS <= maxTickMS {
		cfg.TickMS = raw.TickMS
	}
}

func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, ".config-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer fs.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename config file: %w", err)
	}
	return nil
}

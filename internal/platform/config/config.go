package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of <state-dir>/config.yaml.
type File struct {
	Interpreter      string `yaml:"interpreter"`
	HistoryDB        string `yaml:"history_db"`
	LogFile          string `yaml:"log_file"`
	LoggingRedirect  bool   `yaml:"logging_redirect"`
	DebugRedirect    bool   `yaml:"debug_redirect"`
	PluginsDir       string `yaml:"plugins_dir"`
	LogLevel         string `yaml:"log_level"`
	DisableExtension bool   `yaml:"disable_extensions"`
}

type Config struct {
	StateDir         string
	Interpreter      string
	HistoryDBPath    string
	LogFile          string
	LoggingRedirect  bool
	DebugRedirect    bool
	PluginsDir       string
	LogLevel         string
	DisableExtension bool
}

// New resolves configuration for a state directory, layering the optional
// config.yaml over defaults.
func New(stateDir string) (Config, error) {
	if stateDir == "" {
		return Config{}, fmt.Errorf("state dir is required")
	}
	cfg := Config{
		StateDir:      stateDir,
		Interpreter:   "console",
		HistoryDBPath: filepath.Join(stateDir, "history.db"),
		PluginsDir:    filepath.Join(stateDir, "plugins"),
		LogLevel:      "warn",
	}
	payload, err := os.ReadFile(filepath.Join(stateDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	file := File{}
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if file.Interpreter != "" {
		cfg.Interpreter = file.Interpreter
	}
	if file.HistoryDB != "" {
		cfg.HistoryDBPath = file.HistoryDB
	}
	if file.PluginsDir != "" {
		cfg.PluginsDir = file.PluginsDir
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	cfg.LogFile = file.LogFile
	cfg.LoggingRedirect = file.LoggingRedirect
	cfg.DebugRedirect = file.DebugRedirect
	cfg.DisableExtension = file.DisableExtension
	return cfg, nil
}

// Package config loads and saves the ecgl application settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/ecglearn/pkg/viewer"
)

// FileName is the config file name inside the config directory
const FileName = "config.yaml"

// AppConfig stores persistent application settings
type AppConfig struct {
	Viewer viewer.Config `yaml:"viewer"`

	// DataDir holds balances, uploads and downloaded lessons
	DataDir string `yaml:"data_dir"`
	// LessonDir is searched for *.lesson decks
	LessonDir string `yaml:"lesson_dir,omitempty"`
	// Catalog is an optional YAML shop catalog replacing the built-in one
	Catalog string `yaml:"catalog,omitempty"`
	// User is the local account that earns and spends points
	User     string `yaml:"user"`
	LogLevel string `yaml:"log_level"`
}

// Dir returns the platform config directory, e.g. %APPDATA%\ECGLearn on
// Windows and $XDG_CONFIG_HOME/ecglearn (or ~/.config/ecglearn) elsewhere.
func Dir() (string, error) {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "ECGLearn"), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ecglearn"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "ecglearn"), nil
}

// DefaultPath returns the config file in Dir
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Default returns the settings used when no config file exists
func Default() *AppConfig {
	dataDir := "ecglearn-data"
	if dir, err := Dir(); err == nil {
		dataDir = filepath.Join(dir, "data")
	}
	return &AppConfig{
		Viewer:   viewer.DefaultConfig(),
		DataDir:  dataDir,
		User:     "local",
		LogLevel: "info",
	}
}

// Validate checks the viewer bounds and required fields
func (c *AppConfig) Validate() error {
	if err := c.Viewer.Validate(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.User == "" {
		return fmt.Errorf("user must be set")
	}
	return nil
}

// Load reads the config at path. An empty path means DefaultPath. A missing
// file yields Default; fields absent from the file keep their defaults.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path (DefaultPath when empty), creating the directory
func Save(path string, cfg *AppConfig) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BalancesPath is the JSON balance file inside DataDir
func (c *AppConfig) BalancesPath() string {
	return filepath.Join(c.DataDir, "balances.json")
}

// BlobDir is where uploaded and downloaded media is stored
func (c *AppConfig) BlobDir() string {
	return filepath.Join(c.DataDir, "blobs")
}

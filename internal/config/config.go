package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for anx.
type Config struct {
	DeviceID    string         `toml:"device_id"`    // stable identity for this virtual device
	LibraryRoot string         `toml:"library_root"` // directory holding database7.db and data/
	LogDir      string         `toml:"log_dir"`
	Catalog     CatalogConfig  `toml:"catalog"`
	FileTree    FileTreeConfig `toml:"filetree"`
}

// CatalogConfig selects the catalog backend.
// The Type field determines which backend is used; "sqlite" is the default.
type CatalogConfig struct {
	Type string `toml:"type"` // "sqlite" or "memory"
}

// FileTreeConfig selects the file tree backend.
type FileTreeConfig struct {
	Type string `toml:"type"` // "filesystem" or "memory"
}

// NewConfig creates a Config with the provided values and defaults.
func NewConfig(deviceID, libraryRoot string) *Config {
	return &Config{
		DeviceID:    deviceID,
		LibraryRoot: libraryRoot,
		LogDir:      filepath.Join(libraryRoot, "log"),
		Catalog:     CatalogConfig{Type: "sqlite"},
		FileTree:    FileTreeConfig{Type: "filesystem"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

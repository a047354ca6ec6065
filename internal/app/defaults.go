package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment
// variables first.
// Environment variables:
//   - ANX_CONFIG_PATH: config file location (default: ~/.config/anx.toml)
//   - ANX_LIBRARY: library root override (default: taken from the config file)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"library_root": os.Getenv("ANX_LIBRARY"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("ANX_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "anx.toml"), nil
}

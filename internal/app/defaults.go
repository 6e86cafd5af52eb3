package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CASEFILE_CONFIG_PATH: config file location (default: ~/.config/casefile.toml)
//   - CASEFILE_HOME: base directory for casefile data (default: ~/.local/share/casefile)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking CASEFILE_CONFIG_PATH env var first,
// then falling back to the default ~/.config/casefile.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CASEFILE_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "casefile.toml"), nil
}

// getBaseDir returns the base directory for casefile data, checking CASEFILE_HOME
// env var first, then falling back to the XDG default ~/.local/share/casefile.
func getBaseDir() (string, error) {
	if path := os.Getenv("CASEFILE_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "casefile"), nil
}

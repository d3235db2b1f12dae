package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "devmetrics"

// GetXDGDataDir returns the data directory for devmetrics.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/devmetrics
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// GetXDGConfigDir returns the config directory for devmetrics.
// It respects XDG_CONFIG_HOME if set, otherwise falls back to ~/.config/devmetrics
func GetXDGConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

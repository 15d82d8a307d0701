package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// getLogFilePath returns the rotating log file path, creating its directory
func getLogFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, ".local", "share", "moa")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	return filepath.Join(logDir, "moa.log"), nil
}

// moaVersion returns the build version
func moaVersion() string {
	return version
}

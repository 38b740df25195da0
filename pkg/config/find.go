package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the config file FindFile looks for.
const FileName = ".storecheck.yaml"

// ErrNotFound is returned by FindFile when no config file exists.
var ErrNotFound = errors.New(FileName + " not found")

// FindFile returns explicitPath if set, otherwise searches upward from
// startDir for FileName, stopping at the home directory, a repository
// root, or the filesystem root.
func FindFile(startDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %w", err)
		}
		return explicitPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		path := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		if currentDir == homeDir {
			break
		}

		if _, err := os.Stat(filepath.Join(currentDir, ".git")); err == nil {
			break
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", ErrNotFound
}

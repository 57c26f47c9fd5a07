// ABOUTME: XDG-based data directory resolution for the edaflow CLI.
// ABOUTME: EDAFLOW_DATA_DIR wins, then XDG_DATA_HOME/edaflow, then ~/.local/share/edaflow.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultDataDir returns the directory for persistent state such as the run
// history database.
func defaultDataDir() (string, error) {
	if dir := os.Getenv("EDAFLOW_DATA_DIR"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "edaflow"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "edaflow"), nil
}

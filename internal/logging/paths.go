package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.storekb/logs, or a temp-dir fallback when the
// home directory is unknown.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".storekb", "logs")
	}
	return filepath.Join(home, ".storekb", "logs")
}

// DefaultLogPath returns the server log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "server.log")
}

// FindLogFile resolves the log file to view: explicit if given, otherwise
// the default server log.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no log file found at %s\nRun `storekb --debug serve` or `storekb serve` to create one", path)
	}
	return path, nil
}

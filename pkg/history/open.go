package history

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultDir is where history lives when the config names no location.
func DefaultDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "fleetcheck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fleetcheck")
	}
	return filepath.Join(home, ".local", "share", "fleetcheck")
}

// Open returns the store for backend ("file" or "sqlite"). An empty dir or
// path falls back to DefaultDir.
func Open(backend, dir, path string, logger *zap.Logger) (Store, error) {
	switch backend {
	case "", "file":
		if dir == "" {
			dir = filepath.Join(DefaultDir(), "history")
		}
		return NewFileStore(dir, logger)
	case "sqlite":
		if path == "" {
			path = filepath.Join(DefaultDir(), "history.db")
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

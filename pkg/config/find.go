package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrConfigMissing = errors.New("configuration file not found")

// SystemConfigFile is checked after the per-user file.
var SystemConfigFile = "/etc/fleetcheck/config.yaml"

// UserConfigFile returns ~/.config/fleetcheck/config.yaml.
func UserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fleetcheck", "config.yaml")
}

// Find returns explicit when set, otherwise the first existing file among
// the user and system locations.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigMissing, explicit)
		}
		return explicit, nil
	}
	candidates := []string{UserConfigFile(), SystemConfigFile}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s or %s", ErrConfigMissing, UserConfigFile(), SystemConfigFile)
}

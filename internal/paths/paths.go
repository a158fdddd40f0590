// Package paths locates the garage configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "garage"

// Environment variables that override the platform defaults.
const (
	EnvConfigDir = "GARAGE_CONFIG_DIR"
	EnvDataDir   = "GARAGE_DATA_DIR"
)

// ConfigFileName is the config file inside the config directory.
const ConfigFileName = "config.yaml"

// Swapped out in tests.
var (
	homeDir       = os.UserHomeDir
	userConfigDir = os.UserConfigDir
)

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/garage or ~/.config/garage on Linux, and
// os.UserConfigDir()/garage elsewhere.
func DefaultConfigDir() (string, error) {
	return platformDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory used by the
// development server: $XDG_DATA_HOME/garage or ~/.local/share/garage on
// Linux, and os.UserConfigDir()/garage elsewhere.
func DefaultDataDir() (string, error) {
	return platformDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformDir(xdgVar, homeRel string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// GARAGE_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir picks the data directory: flag, then the data_dir config
// value, then GARAGE_DATA_DIR, then DefaultDataDir.
func ResolveDataDir(flag, configured string) (string, error) {
	return resolve(DefaultDataDir, flag, configured, os.Getenv(EnvDataDir))
}

// resolve returns the first non-empty candidate as an absolute path, or the
// fallback.
func resolve(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}

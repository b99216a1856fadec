package commands

import (
	"os"
	"path/filepath"

	"github.com/riccilnl/linkgenie/internal/core/config"
)

// Flags carries the global flag values and the config loaded from them.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// APIURL and Token override the config file when set.
	APIURL string
	Token  string

	// Config is set by the root Before hook.
	Config *config.Config
}

// DefaultConfigPath is $XDG_CONFIG_HOME/linkgenie/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/linkgenie.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// xdgDir resolves the linkgenie directory under an XDG base directory,
// falling back to a path under $HOME when env is unset.
func xdgDir(env string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(base, "linkgenie")
}

package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Settings holds the user-level tool preferences, read from settings.toml in
// the platform config directory. These never affect compiled-program
// semantics. Of these fields only Execution.MaxSteps is read elsewhere (by
// the service's run step guard); Display.NumberFormat and
// Debugger.HistorySize are loaded but not read by the CLI or the debugger.
type Settings struct {
	Display struct {
		NumberFormat string `toml:"number_format"` // signed, unsigned, binary, hexadecimal
	} `toml:"display"`

	Debugger struct {
		HistorySize int `toml:"history_size"`
	} `toml:"debugger"`

	Execution struct {
		// MaxSteps aborts a runaway program after this many steps.
		// 0 means unlimited.
		MaxSteps uint64 `toml:"max_steps"`
	} `toml:"execution"`
}

// DefaultSettings returns the settings used when no settings.toml exists.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.Display.NumberFormat = "hexadecimal"
	s.Debugger.HistorySize = 100
	s.Execution.MaxSteps = 0
	return s
}

// GetSettingsPath returns the platform-specific settings file path.
func GetSettingsPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "thumb-emulator")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "settings.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "thumb-emulator")

	default:
		return "settings.toml"
	}

	return filepath.Join(configDir, "settings.toml")
}

// LoadSettings loads settings from the default path.
func LoadSettings() *Settings {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from the specified file, falling back to
// defaults when the file does not exist or cannot be parsed. Tool
// preferences are never fatal.
func LoadSettingsFrom(path string) *Settings {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s
	}
	if _, err := toml.DecodeFile(path, s); err != nil {
		return DefaultSettings()
	}
	return s
}

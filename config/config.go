// Package config loads and saves the user configuration file.
package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const fileName = ".renglon.toml"

type Config struct {
	// EnableLogger writes diagnostics to renglon.log in the working
	// directory.
	EnableLogger bool `toml:"enable_logger"`

	// RawOutput writes the acquired line as raw bytes instead of decoded
	// text.
	RawOutput bool `toml:"raw_output"`

	// Prompt is printed to stderr before reading when stdin is a
	// terminal.
	Prompt string `toml:"prompt"`
}

func DefaultConfig() Config {
	return Config{
		EnableLogger: false,
		RawOutput:    false,
		Prompt:       "",
	}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fileName), nil
}

// LoadConfig reads the config file, falling back to defaults when the file
// is missing or unreadable.
func LoadConfig() Config {
	cfg := DefaultConfig()
	path, err := configPath()
	if err != nil {
		return cfg
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		log.Printf("ignoring malformed config %s: %v", path, err)
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig writes cfg to the config file, creating it if needed.
func SaveConfig(cfg Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

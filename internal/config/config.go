// Package config loads the optional keysync.toml configuration file.
// Missing file means defaults; flags override whatever the file set.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up inside the home directory.
const FileName = "keysync.toml"

// Directory configures the remote key directory.
type Directory struct {
	URL          string `toml:"url"`
	AutoSync     bool   `toml:"auto_sync"`
	GenerateKeys bool   `toml:"generate_keys"`
}

// Log configures the logging backend.
type Log struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Config is the full file contents.
type Config struct {
	Directory Directory `toml:"directory"`
	Log       Log       `toml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Directory: Directory{
			AutoSync:     true,
			GenerateKeys: true,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the config file under home, returning defaults when the file
// does not exist. Unrecognized keys are ignored.
func Load(home string) (Config, error) {
	cfg := Default()
	path := filepath.Join(home, FileName)
	_, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %v", path, err)
	}
	return cfg, nil
}

// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Backend BackendConfig `toml:"backend"`
	Web     WebConfig     `toml:"web"`
	View    ViewConfig    `toml:"view"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig maps analytics backend settings.
type BackendConfig struct {
	BaseURL        *string `toml:"base-url"`
	TimeoutSeconds *int    `toml:"timeout-seconds"`
	UserAgent      *string `toml:"user-agent"`
}

// WebConfig maps the hosting site settings used to recognise URLs.
type WebConfig struct {
	Host *string `toml:"host"`
}

// ViewConfig maps presentation settings.
type ViewConfig struct {
	Mode     *string  `toml:"mode"`
	Chart    *string  `toml:"chart"`
	Color    *bool    `toml:"color"`
	Examples []string `toml:"examples"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	File   *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if v := cfg.Backend.TimeoutSeconds; v != nil && *v <= 0 {
		return FileConfig{}, fmt.Errorf("backend.timeout-seconds must be > 0")
	}
	return cfg, nil
}

// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz  QuizConfig  `toml:"quiz"`
	Audio AudioConfig `toml:"audio"`
	Log   LogConfig   `toml:"log"`
}

// QuizConfig maps session-related settings.
type QuizConfig struct {
	Mode      *string `toml:"mode"`
	Level     *int    `toml:"level"`
	Questions *int    `toml:"questions"`
	Catalog   *string `toml:"catalog"`
}

// AudioConfig maps notification settings. Whether audio is enabled at all
// is a profile preference, not a config value.
type AudioConfig struct {
	SpeechCommand *string `toml:"speech-command"`
	Bell          *bool   `toml:"bell"`
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
	return cfg, nil
}

// StringOr returns *v or fallback when v is nil.
func StringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

// BoolOr returns *v or fallback when v is nil.
func BoolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

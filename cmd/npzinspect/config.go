package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the npzinspect configuration file
// (~/.config/npzinspect/config.yaml). Unset fields leave flag defaults alone.
type Config struct {
	MaxArrayBytes *uint64 `yaml:"max_array_bytes"`
	LogLevel      string  `yaml:"log_level"`
	Format        string  `yaml:"format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "npzinspect", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path) //nolint:gosec // fixed location under the user config dir
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyInfoConfig applies config file defaults to info command variables
// when the corresponding flag was not explicitly set.
func applyInfoConfig(c *cli.Command, cfg Config, format, logLevel *string, maxBytes *uint64) {
	if cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*logLevel = cfg.LogLevel
	}
	if cfg.MaxArrayBytes != nil && !c.IsSet("max-array-bytes") {
		*maxBytes = *cfg.MaxArrayBytes
	}
}

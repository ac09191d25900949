package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Interactive modes.
const (
	InteractiveAuto   = "auto"
	InteractiveAlways = "always"
	InteractiveNever  = "never"
)

type Config struct {
	Prompt      string `yaml:"prompt"`
	Interactive string `yaml:"interactive"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	HomeDir     string `yaml:"home_dir"`
}

// Load reads file and fills in defaults. A missing file is not an error.
func Load(file string) (*Config, error) {
	cfg := &Config{}
	if file != "" {
		data, err := os.ReadFile(file)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", file, err)
			}
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() error {
	if c.Prompt == "" {
		c.Prompt = "$ "
	}
	if c.Interactive == "" {
		c.Interactive = InteractiveAuto
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.HomeDir = home
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Interactive {
	case InteractiveAuto, InteractiveAlways, InteractiveNever:
		return nil
	default:
		return fmt.Errorf("interactive: unknown mode %q", c.Interactive)
	}
}

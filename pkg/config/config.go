// Package config loads storecheck settings from a YAML file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	DefaultDSN = "sqlite://:memory:"

	// DSNEnv overrides DefaultDSN when no dsn is configured.
	DSNEnv = "STORECHECK_DSN"
)

type Config struct {
	DSN        string        `yaml:"dsn"`
	Fields     []string      `yaml:"fields"`
	Timeout    time.Duration `yaml:"timeout"`
	StartDelay time.Duration `yaml:"start_delay"`
	MinVersion string        `yaml:"min_version"`
	Format     string        `yaml:"format"`
	Debug      bool          `yaml:"debug"`
}

// Load reads and validates the file at path, then applies defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the operator
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	Normalize(cfg)
	return cfg, nil
}

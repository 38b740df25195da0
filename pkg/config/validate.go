package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Validate checks configuration correctness without mutating it.
func Validate(cfg *Config) error {
	switch cfg.Format {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, cfg.Format)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	if cfg.StartDelay < 0 {
		return fmt.Errorf("start_delay must not be negative, got %s", cfg.StartDelay)
	}

	if cfg.MinVersion != "" {
		if _, err := semver.NewVersion(cfg.MinVersion); err != nil {
			return fmt.Errorf("min_version %q: %w", cfg.MinVersion, err)
		}
	}

	seen := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return fmt.Errorf("fields must not contain empty names")
		}
		if seen[f] {
			return fmt.Errorf("field %q listed twice", f)
		}
		seen[f] = true
	}
	return nil
}

package config

import (
	"os"
	"strings"
)

// Normalize fills in defaults. Call it after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv(DSNEnv)
	}
	if cfg.DSN == "" {
		cfg.DSN = DefaultDSN
	}

	if cfg.Format == "" {
		cfg.Format = FormatText
	}

	for i, f := range cfg.Fields {
		cfg.Fields[i] = strings.TrimSpace(f)
	}
}

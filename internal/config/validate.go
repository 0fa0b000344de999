package config

import (
	"fmt"
	"strings"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that all fields contain usable values. It validates:
//   - server.port is in 1-65535
//   - server.cors_origins has no empty entries
//   - cli.name is set and cli.timeout_seconds is positive
//   - prompt.extension starts with "." and prompt.document_var is set
//   - log.level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error naming the invalid field.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port: invalid port number %d, must be 1-65535", cfg.Server.Port)
	}
	for i, origin := range cfg.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.cors_origins[%d]: must not be empty", i)
		}
	}

	if strings.TrimSpace(cfg.CLI.Name) == "" {
		return fmt.Errorf("cli.name: must not be empty")
	}
	if cfg.CLI.TimeoutSeconds <= 0 {
		return fmt.Errorf("cli.timeout_seconds: must be positive, got %d", cfg.CLI.TimeoutSeconds)
	}

	if !strings.HasPrefix(cfg.Prompt.Extension, ".") || len(cfg.Prompt.Extension) < 2 {
		return fmt.Errorf("prompt.extension: invalid value %q, must start with \".\"", cfg.Prompt.Extension)
	}
	if strings.TrimSpace(cfg.Prompt.DocumentVar) == "" {
		return fmt.Errorf("prompt.document_var: must not be empty")
	}

	if cfg.Log.Level != "" {
		if !validLogLevels[cfg.Log.Level] {
			return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
		}
	}

	return nil
}

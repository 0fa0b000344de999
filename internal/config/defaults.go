package config

// DefaultConfig returns a Config with all defaults populated.
// The values mirror what the pdd backend has always shipped with: bind on
// all interfaces at 8000, allow any CORS origin, give pdd five minutes.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"*"},
			Root:        ".",
		},
		CLI: CLIConfig{
			Name:    "pdd",
			VenvDir: "venv_pdd",
			FallbackDirs: []string{
				"~/Desktop/pdd_server/venv_pdd/bin",
			},
			TimeoutSeconds: 300,
			// Commands that ask for interactive confirmation. Not every pdd
			// command accepts --yes (generate does not).
			AutoConfirm: []string{"sync", "change", "split", "preprocess"},
		},
		Prompt: PromptConfig{
			Extension:       ".prompt",
			DefaultDocument: "docs/specs.md",
			DocumentVar:     "PRD_FILE",
		},
		Providers: ProvidersConfig{
			Primary:   "GEMINI_API_KEY",
			Exclusive: []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
			Keys:      map[string]string{},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

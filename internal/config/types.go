// Package config provides the pddserve configuration. Settings come from
// built-in defaults, an optional YAML file and environment variables, and
// are read once at startup into an immutable Config.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete pddserve configuration.
// It is typically stored at ~/.config/pddserve/config.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	CLI       CLIConfig       `yaml:"cli,omitempty"`
	Prompt    PromptConfig    `yaml:"prompt,omitempty"`
	Providers ProvidersConfig `yaml:"providers,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// ServerConfig contains HTTP listener and filesystem root settings.
type ServerConfig struct {
	Host        string   `yaml:"host,omitempty"`
	Port        int      `yaml:"port,omitempty"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	// Root is the server directory. Prompt paths, /files paths and the
	// default document resolve against it, and pdd runs with it as cwd.
	Root string `yaml:"root,omitempty"`
	// StaticDir holds the pre-built frontend bundle. Empty means <root>/../dist.
	StaticDir string `yaml:"static_dir,omitempty"`
}

// CLIConfig describes how the wrapped pdd executable is found and run.
type CLIConfig struct {
	Name           string   `yaml:"name,omitempty"`
	Path           string   `yaml:"path,omitempty"`
	VenvDir        string   `yaml:"venv_dir,omitempty"`
	FallbackDirs   []string `yaml:"fallback_dirs,omitempty"`
	TimeoutSeconds int      `yaml:"timeout_seconds,omitempty"`
	AutoConfirm    []string `yaml:"auto_confirm,omitempty"`
}

// PromptConfig controls prompt-file handling.
type PromptConfig struct {
	Extension       string `yaml:"extension,omitempty"`
	TempDir         string `yaml:"temp_dir,omitempty"`
	DefaultDocument string `yaml:"default_document,omitempty"`
	DocumentVar     string `yaml:"document_var,omitempty"`
}

// ProvidersConfig selects which LLM provider key the child process sees.
// Key values are never read from the config file, only from the environment.
type ProvidersConfig struct {
	Primary   string            `yaml:"primary,omitempty"`
	Exclusive []string          `yaml:"exclusive,omitempty"`
	Keys      map[string]string `yaml:"-"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`
	File      string `yaml:"file,omitempty"`
	AuditFile string `yaml:"audit_file,omitempty"`
}

// ListenAddr returns the host:port the HTTP server binds to.
func (s ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Timeout returns the subprocess timeout as a duration.
func (c CLIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PrimaryKey returns the configured value of the primary provider key, if any.
func (p ProvidersConfig) PrimaryKey() (string, bool) {
	if p.Primary == "" {
		return "", false
	}
	v, ok := p.Keys[p.Primary]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/pathutil"
)

// Environment variables consulted by Load. Provider key names are taken
// from the providers section, so a config that renames the primary key
// also changes which variable is read.
const (
	EnvHost        = "HOST"
	EnvPort        = "PORT"
	EnvCORSOrigins = "CORS_ORIGINS"
	EnvTimeout     = "PDD_COMMAND_TIMEOUT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvCLIPath     = "PDD_PATH"
)

// Overrides are command-line values applied on top of the environment.
// Zero fields are ignored.
type Overrides struct {
	Host string
	Port int
	Root string
}

func (o Overrides) apply(cfg *Config) {
	if o.Host != "" {
		cfg.Server.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.Root != "" {
		cfg.Server.Root = o.Root
	}
}

// Load builds the effective configuration:
//  1. DefaultConfig()
//  2. the YAML file at path (DefaultPath() when path is empty), if it exists
//  3. environment variable overrides
//  4. validation and path expansion
//
// A missing file is not an error. A file that exists but cannot be read,
// parsed or validated is.
func Load(path string) (*Config, error) {
	return LoadWith(path, Overrides{})
}

// LoadWith is Load with command-line overrides applied after the environment.
func LoadWith(path string, o Overrides) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	clog.Debug("config: loading from %s", path)

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = ParseConfig(data)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		clog.Debug("config: file not found, using defaults")
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	o.apply(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := expandPaths(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Empty variables are
// treated as unset.
func applyEnv(cfg *Config) error {
	v := viper.New()
	keys := []string{EnvHost, EnvPort, EnvCORSOrigins, EnvTimeout, EnvLogLevel, EnvCLIPath}
	keys = append(keys, providerKeyNames(cfg.Providers)...)
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if v.IsSet(EnvHost) {
		cfg.Server.Host = v.GetString(EnvHost)
	}
	if v.IsSet(EnvPort) {
		port, err := strconv.Atoi(strings.TrimSpace(v.GetString(EnvPort)))
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v.GetString(EnvPort))
		}
		cfg.Server.Port = port
	}
	if v.IsSet(EnvCORSOrigins) {
		cfg.Server.CORSOrigins = ParseOrigins(v.GetString(EnvCORSOrigins))
	}
	if v.IsSet(EnvTimeout) {
		secs, err := strconv.Atoi(strings.TrimSpace(v.GetString(EnvTimeout)))
		if err != nil {
			return fmt.Errorf("%s: invalid seconds %q", EnvTimeout, v.GetString(EnvTimeout))
		}
		cfg.CLI.TimeoutSeconds = secs
	}
	if v.IsSet(EnvLogLevel) {
		cfg.Log.Level = normalizeLevel(v.GetString(EnvLogLevel))
	}
	if v.IsSet(EnvCLIPath) {
		cfg.CLI.Path = v.GetString(EnvCLIPath)
	}

	if cfg.Providers.Keys == nil {
		cfg.Providers.Keys = map[string]string{}
	}
	for _, name := range providerKeyNames(cfg.Providers) {
		if v.IsSet(name) {
			cfg.Providers.Keys[name] = v.GetString(name)
		}
	}
	return nil
}

// normalizeLevel lowercases a level name and folds the aliases accepted
// for LOG_LEVEL ("warning", "critical", "fatal") onto the supported set.
func normalizeLevel(s string) string {
	level := strings.ToLower(strings.TrimSpace(s))
	switch level {
	case "warning":
		return "warn"
	case "critical", "fatal":
		return "error"
	}
	return level
}

// providerKeyNames returns the primary and exclusive key names, deduplicated.
func providerKeyNames(p ProvidersConfig) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range append([]string{p.Primary}, p.Exclusive...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ParseOrigins splits a comma-separated CORS origin list. A lone "*" is the
// wildcard; blank entries are dropped.
func ParseOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// expandPaths expands ~ in all path fields and makes the server root
// absolute. An empty static dir is derived from the root.
func expandPaths(cfg *Config) error {
	root, err := pathutil.Absolute(cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("server.root: %w", err)
	}
	cfg.Server.Root = root

	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = filepath.Join(filepath.Dir(root), "dist")
	} else {
		cfg.Server.StaticDir = pathutil.ExpandHome(cfg.Server.StaticDir)
	}

	cfg.CLI.Path = pathutil.ExpandHome(cfg.CLI.Path)
	for i, dir := range cfg.CLI.FallbackDirs {
		cfg.CLI.FallbackDirs[i] = pathutil.ExpandHome(dir)
	}
	cfg.Prompt.TempDir = pathutil.ExpandHome(cfg.Prompt.TempDir)
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
	cfg.Log.AuditFile = pathutil.ExpandHome(cfg.Log.AuditFile)
	return nil
}

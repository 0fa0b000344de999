package executor

import (
	"strings"

	"github.com/pddkit/pddserve/internal/config"
)

// ChildEnv builds the environment for pdd from base (usually os.Environ()).
// When the primary provider key has a value it is set and the exclusive
// keys are removed so pdd cannot pick another provider. Otherwise base is
// returned as a copy, unchanged.
func ChildEnv(base []string, providers config.ProvidersConfig) []string {
	primary, ok := providers.PrimaryKey()
	if !ok {
		return append([]string(nil), base...)
	}

	drop := make(map[string]bool, len(providers.Exclusive)+1)
	for _, k := range providers.Exclusive {
		drop[k] = true
	}
	drop[providers.Primary] = true

	env := make([]string, 0, len(base)+1)
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if drop[name] {
			continue
		}
		env = append(env, kv)
	}
	return append(env, providers.Primary+"="+primary)
}

// LookupEnv returns the value of key in env, using the last occurrence.
func LookupEnv(env []string, key string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		name, value, found := strings.Cut(env[i], "=")
		if found && name == key {
			return value, true
		}
	}
	return "", false
}

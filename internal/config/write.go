package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is written by `pddserve config init`. Every value is
// the built-in default, so an untouched file changes nothing.
const defaultConfigTemplate = `# pddserve configuration
#
# Environment variables override this file:
#   HOST, PORT, CORS_ORIGINS, PDD_COMMAND_TIMEOUT, LOG_LEVEL, PDD_PATH
# Provider API keys are only read from the environment.

server:
  host: 0.0.0.0
  port: 8000
  # Comma list in CORS_ORIGINS, or "*" for any origin.
  cors_origins:
    - "*"
  # Server directory: prompt paths, /files paths and the default
  # document resolve here, and pdd runs with it as working directory.
  root: .
  # Pre-built frontend bundle. Empty means <root>/../dist.
  # static_dir: ~/pdd/dist

cli:
  name: pdd
  # Explicit executable, same as PDD_PATH.
  # path: /usr/local/bin/pdd
  # <root>/<venv_dir>/bin and <root>/../<venv_dir>/bin are searched first.
  venv_dir: venv_pdd
  fallback_dirs:
    - ~/Desktop/pdd_server/venv_pdd/bin
  timeout_seconds: 300
  # Commands that get --yes appended unless -y/--yes is already present.
  auto_confirm:
    - sync
    - change
    - split
    - preprocess

prompt:
  extension: .prompt
  # Where literal prompt content is written. Empty means the OS temp dir.
  # temp_dir: /tmp
  # Injected as -e PRD_FILE=<default_document> for literal prompts when
  # the file exists under root and no PRD_FILE was given.
  default_document: docs/specs.md
  document_var: PRD_FILE

providers:
  # When the primary key is set, the exclusive keys are removed from the
  # pdd environment so only one provider is used.
  primary: GEMINI_API_KEY
  exclusive:
    - OPENAI_API_KEY
    - ANTHROPIC_API_KEY

log:
  level: info
  # file: ~/.local/state/pddserve/pddserve.log
  # audit_file: ~/.local/state/pddserve/audit.log
`

// WriteDefault creates a commented default configuration file at path.
// If the file already exists, it returns nil without overwriting.
// The parent directory is created with 0700 and the file written with 0600.
func WriteDefault(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

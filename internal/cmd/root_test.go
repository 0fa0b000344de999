package cmd

import (
	"strings"
	"testing"

	"github.com/pddkit/pddserve/internal/config"
)

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand(t, "--help")
	if err != nil {
		t.Fatalf("root command --help returned error: %v", err)
	}

	expectedStrings := []string{
		"pddserve",
		"pdd command-line tool over HTTP",
		"Usage:",
		"Available Commands:",
		"serve",
		"commands",
		"run",
		"config",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(stdout, expected) {
			t.Errorf("help output missing expected string %q\nGot: %s", expected, stdout)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	stdout, _, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("root command --version returned error: %v", err)
	}

	if !strings.Contains(stdout, "pddserve") {
		t.Errorf("version output missing 'pddserve'\nGot: %s", stdout)
	}
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	_, stderr, err := executeCommand(t, "bogus")
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("stderr = %q, want unknown command error", stderr)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := isolateEnv(t)
	path := dir + "/bad.yaml"
	writeTestFile(t, path, "bogus_section: true\n")

	_, stderr, err := executeCommand(t, "--config", path, "config", "show")
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(stderr, "failed to load config") {
		t.Errorf("stderr = %q, want load failure", stderr)
	}
}

func TestServeCommand_HelpNamesBoundEnv(t *testing.T) {
	stdout, _, err := executeCommand(t, "serve", "--help")
	if err != nil {
		t.Fatalf("serve --help returned error: %v", err)
	}

	for _, want := range []string{config.EnvHost, config.EnvPort, "--host", "--port", "--root"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("serve help missing %q\nGot: %s", want, stdout)
		}
	}
	if strings.Contains(stdout, "PDD_HOST") || strings.Contains(stdout, "PDD_PORT") {
		t.Errorf("serve help names unbound variables\nGot: %s", stdout)
	}
}

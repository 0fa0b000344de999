// Package registry holds the fixed set of pdd commands the server is willing
// to run. The registry is built at init and never changes afterwards.
package registry

import "strings"

// CommandSpec describes one pdd sub-command.
type CommandSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
}

var commands = []CommandSpec{
	{
		Name:        "sync",
		Description: "[PRIMARY COMMAND] Automatically executes the complete PDD workflow loop for a given basename - from dependency injection through code generation, testing, and verification.",
		Usage:       "pdd sync -b <basename>",
	},
	{
		Name:        "generate",
		Description: "Creates runnable code from a prompt file; supports parameterized prompts via -e/--env.",
		Usage:       "pdd generate -p <prompt_file> or pdd generate -b <basename>",
	},
	{
		Name:        "example",
		Description: "Generates a compact example showing how to use functionality defined in a prompt.",
		Usage:       "pdd example -b <basename>",
	},
	{
		Name:        "test",
		Description: "Generates or enhances unit tests for a code file and its prompt.",
		Usage:       "pdd test -b <basename>",
	},
	{
		Name:        "preprocess",
		Description: "Preprocesses prompt files, handling includes, comments, and other directives.",
		Usage:       "pdd preprocess -p <prompt_file>",
	},
	{
		Name:        "fix",
		Description: "Fixes errors in code and unit tests based on error messages and the original prompt.",
		Usage:       "pdd fix -b <basename>",
	},
	{
		Name:        "split",
		Description: "Splits large prompt files into smaller, more manageable ones.",
		Usage:       "pdd split -p <prompt_file>",
	},
	{
		Name:        "change",
		Description: "Modifies a prompt file based on instructions in a change prompt.",
		Usage:       "pdd change -b <basename>",
	},
	{
		Name:        "update",
		Description: "Updates the original prompt file based on modified code.",
		Usage:       "pdd update -b <basename>",
	},
	{
		Name:        "detect",
		Description: "Analyzes prompts to determine which ones need changes based on a description.",
		Usage:       "pdd detect -b <basename>",
	},
	{
		Name:        "conflicts",
		Description: "Finds and suggests resolutions for conflicts between two prompt files.",
		Usage:       "pdd conflicts -b <basename1> -b <basename2>",
	},
	{
		Name:        "crash",
		Description: "Fixes errors in a code module and its calling program that caused a crash. Includes an agentic fallback mode for complex errors.",
		Usage:       "pdd crash -b <basename>",
	},
	{
		Name:        "trace",
		Description: "Finds the corresponding line number in a prompt file for a given code line.",
		Usage:       "pdd trace -b <basename>",
	},
	{
		Name:        "bug",
		Description: "Generates a unit test based on observed vs. desired program outputs.",
		Usage:       "pdd bug -b <basename>",
	},
	{
		Name:        "auto-deps",
		Description: "Analyzes and inserts needed dependencies into a prompt file.",
		Usage:       "pdd auto-deps -b <basename>",
	},
	{
		Name:        "verify",
		Description: "Verifies functional correctness by running a program and judging its output against the prompt's intent using an LLM.",
		Usage:       "pdd verify -b <basename>",
	},
}

// byName indexes commands for Lookup.
var byName = func() map[string]CommandSpec {
	m := make(map[string]CommandSpec, len(commands))
	for _, c := range commands {
		m[c.Name] = c
	}
	return m
}()

// List returns every registered command in a stable order.
// The returned slice is a copy.
func List() []CommandSpec {
	out := make([]CommandSpec, len(commands))
	copy(out, commands)
	return out
}

// Names returns the registered command names in registry order.
func Names() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the command with the given name. Matching is exact.
func Lookup(name string) (CommandSpec, bool) {
	c, ok := byName[name]
	return c, ok
}

// Has reports whether name is a registered command.
func Has(name string) bool {
	_, ok := byName[name]
	return ok
}

// NamesList returns the command names joined for human-readable messages.
func NamesList() string {
	return strings.Join(Names(), ", ")
}

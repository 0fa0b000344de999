package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pddkit/pddserve/internal/registry"
	"github.com/pddkit/pddserve/internal/term"
)

var commandsJSON bool

var commandsCmd = &cobra.Command{
	Use:   "commands [name]",
	Short: "List the pdd commands the server accepts",
	Long: `List the pdd commands the server accepts, with usage and description.

Prints a table when stdout is a terminal and JSON otherwise. The JSON form
matches the GET /commands response. With a name, prints only that command.`,
	Aliases: []string{"ls"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCommands,
}

func init() {
	commandsCmd.Flags().BoolVar(&commandsJSON, "json", false, "print JSON even on a terminal")
	rootCmd.AddCommand(commandsCmd)
}

type commandsOutput struct {
	Commands []registry.CommandSpec `json:"commands"`
	Total    int                    `json:"total"`
}

func runCommands(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return showCommand(args[0])
	}

	specs := registry.List()
	if commandsJSON || !term.IsTerminal() {
		return term.JSON(commandsOutput{Commands: specs, Total: len(specs)})
	}
	return writeCommandsTable(term.Stdout(), specs)
}

func showCommand(name string) error {
	spec, ok := registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown command %q; available commands: %s", name, registry.NamesList())
	}
	if commandsJSON || !term.IsTerminal() {
		return term.JSON(spec)
	}
	term.Printf("%s\n  usage: %s\n\n%s\n", spec.Name, spec.Usage, spec.Description)
	return nil
}

// writeCommandsTable prints specs as a NAME/USAGE/DESCRIPTION table.
func writeCommandsTable(out io.Writer, specs []registry.CommandSpec) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUSAGE\tDESCRIPTION")
	for _, c := range specs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Usage, truncate(c.Description, 60))
	}
	return w.Flush()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

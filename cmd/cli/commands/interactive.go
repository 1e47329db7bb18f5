package commands

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commands that make no sense inside a session
var notInteractive = map[string]bool{
	"interactive": true,
	"serve":       true,
	"completion":  true,
	"help":        true,
}

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (connect once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands against one
database connection. The session keeps running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			root := cmd.Root()
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts, err := parseCommandLine(line)
				if err != nil {
					fmt.Printf("✗ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}

				switch parts[0] {
				case "exit", "quit":
					fmt.Println("Goodbye!")
					return nil
				case "help":
					printInteractiveHelp(root)
					continue
				}

				if err := runInteractive(root, parts); err != nil {
					fmt.Printf("✗ Error: %v\n\n", err)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}
}

// runInteractive resolves parts to a (sub)command and runs its RunE directly,
// bypassing Execute so the root's PersistentPreRunE does not initialise the app again
func runInteractive(root *cobra.Command, parts []string) error {
	if notInteractive[parts[0]] {
		return fmt.Errorf("%s is not available in an interactive session", parts[0])
	}

	target, rest, err := root.Find(parts)
	if err != nil || target == root {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", parts[0])
	}

	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(rest); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}
	args := target.Flags().Args()

	if target.Args != nil {
		if err := target.Args(target, args); err != nil {
			return err
		}
	}
	if err := target.ValidateRequiredFlags(); err != nil {
		return err
	}

	switch {
	case target.RunE != nil:
		return target.RunE(target, args)
	case target.Run != nil:
		target.Run(target, args)
		return nil
	default:
		return target.Help()
	}
}

func printInteractiveHelp(root *cobra.Command) {
	fmt.Println("\nAvailable commands:")

	var lines []string
	for _, cmd := range root.Commands() {
		if notInteractive[cmd.Name()] {
			continue
		}
		if !cmd.HasSubCommands() {
			lines = append(lines, fmt.Sprintf("  %-34s %s", cmd.Use, cmd.Short))
			continue
		}
		for _, sub := range cmd.Commands() {
			lines = append(lines, fmt.Sprintf("  %-34s %s", cmd.Name()+" "+sub.Use, sub.Short))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Println(l)
	}

	fmt.Println("\n  help                               Show this help message")
	fmt.Println("  exit, quit                         Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single and double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
)

// Version is stamped at build time
var Version = "dev"

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet

	out io.Writer
}

// ExitError carries a process exit code other than 1
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// NewRootCommand creates the root command. Results go to out; logs and flag
// errors go to errOut.
func NewRootCommand(out, errOut io.Writer) *Command {
	root := &Command{
		Name:        "modverify",
		Description: "modverify - module dependency verification for UI builds",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("modverify", flag.ContinueOnError),
		out:         out,
	}

	root.Subcommands["verify"] = newVerifyCommand(out, errOut)
	root.Subcommands["graph"] = newGraphCommand(out, errOut)
	root.Subcommands["impact"] = newImpactCommand(out, errOut)
	root.Subcommands["normalize"] = newNormalizeCommand(out, errOut)

	return root
}

// Execute runs the subcommand named by args[0]
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	subcmd, ok := c.Subcommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}

	err := subcmd.Run(ctx, args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// usage prints the command usage
func (c *Command) usage() error {
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(c.out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(c.out, "Commands:\n")
	for _, name := range names {
		fmt.Fprintf(c.out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
)

// newImpactCommand creates a new impact command
func newImpactCommand(out, errOut io.Writer) *Command {
	fs := flag.NewFlagSet("impact", flag.ContinueOnError)
	fs.SetOutput(errOut)
	project := addProjectFlags(fs)
	group := fs.String("group", "", "Group whose dependents are listed (required)")

	return &Command{
		Name:        "impact",
		Description: "List groups that transitively depend on a group",
		Flags:       fs,
		Run: func(ctx context.Context, args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if *group == "" {
				return fmt.Errorf("-group is required")
			}

			cfg, err := project.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, errOut)
			if err != nil {
				return err
			}

			a, err := loadAnalyzer(ctx, cfg, logger)
			if err != nil {
				return err
			}

			dependents, err := a.Impact(*group)
			if err != nil {
				return err
			}

			if len(dependents) == 0 {
				fmt.Fprintf(out, "No groups depend on %s\n", *group)
				return nil
			}
			fmt.Fprintf(out, "%d groups depend on %s:\n", len(dependents), *group)
			for _, d := range dependents {
				fmt.Fprintf(out, "  %s\n", d)
			}
			return nil
		},
	}
}

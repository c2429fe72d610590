package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/modverify/pkg/config"
	"github.com/platinummonkey/modverify/pkg/moduleid"
)

// newNormalizeCommand creates a new normalize command
func newNormalizeCommand(out, errOut io.Writer) *Command {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var (
		dir        = fs.String("dir", ".", "Project directory searched for modverify.yaml")
		configFile = fs.String("config", "", "Path to config file (overrides -dir search)")
	)

	return &Command{
		Name:        "normalize",
		Description: "Show how module identifiers are parsed and normalized",
		Flags:       fs,
		Run: func(ctx context.Context, args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() == 0 {
				return fmt.Errorf("at least one identifier is required")
			}

			var cfg *config.Config
			var err error
			if *configFile != "" {
				cfg, err = config.Load(*configFile)
			} else {
				cfg, err = config.LoadFromDir(*dir)
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			aliases := cfg.Aliases()
			for _, raw := range fs.Args() {
				describeIdentifier(out, aliases, raw)
			}
			return nil
		},
	}
}

func describeIdentifier(w io.Writer, aliases moduleid.Aliases, raw string) {
	parsed := moduleid.Parse(raw)
	aliased := aliases.Resolve(parsed)
	normalized := moduleid.Normalize(aliased)

	plugins := make([]string, 0, len(parsed.Plugins))
	for _, p := range parsed.Plugins {
		if p.HasArg {
			plugins = append(plugins, p.Name+"("+p.Arg+")")
		} else {
			plugins = append(plugins, p.Name)
		}
	}

	extensions := "-"
	if exts, ok := moduleid.ImpliedExtensions(normalized); ok {
		extensions = strings.Join(exts, " ")
	}

	fmt.Fprintf(w, "%s\n", raw)
	fmt.Fprintf(w, "  base:       %s\n", parsed.Base)
	fmt.Fprintf(w, "  plugins:    %s\n", strings.Join(plugins, ", "))
	fmt.Fprintf(w, "  aliased:    %s\n", aliased)
	fmt.Fprintf(w, "  normalized: %s\n", normalized)
	fmt.Fprintf(w, "  group:      %s\n", normalized.GroupName())
	fmt.Fprintf(w, "  extensions: %s\n", extensions)
}

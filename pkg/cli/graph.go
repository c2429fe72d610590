package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/platinummonkey/modverify/pkg/dependencies"
)

// newGraphCommand creates a new graph command
func newGraphCommand(out, errOut io.Writer) *Command {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	fs.SetOutput(errOut)
	project := addProjectFlags(fs)

	var (
		format = fs.String("format", "cytoscape", "Output format: cytoscape, dot")
		level  = fs.String("level", "group", "Graph level: group, file")
		output = fs.String("output", "", "Write the graph to this file instead of stdout")
	)

	return &Command{
		Name:        "graph",
		Description: "Export the group or module dependency graph",
		Flags:       fs,
		Run: func(ctx context.Context, args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if *format != "cytoscape" && *format != "dot" {
				return fmt.Errorf("unknown graph format: %s", *format)
			}
			if *level != "group" && *level != "file" {
				return fmt.Errorf("unknown graph level: %s", *level)
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

			var (
				g      *dependencies.DirectedGraph
				cycles [][]string
			)
			if *level == "group" {
				if err := a.TestUICycles(ctx); err != nil {
					return err
				}
				if g, err = a.GroupGraph(); err != nil {
					return err
				}
				cycles = a.UICycles()
			} else {
				if err := a.TestCycles(ctx); err != nil {
					return err
				}
				g = a.FileGraph()
				cycles = a.Cycles()
			}

			w := out
			if *output != "" {
				f, err := os.Create(*output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", *output, err)
				}
				defer f.Close()
				w = f
			}

			return writeGraph(w, g, *format, cycles)
		},
	}
}

func writeGraph(w io.Writer, g *dependencies.DirectedGraph, format string, cycles [][]string) error {
	if format == "dot" {
		return g.WriteDOT(w, cycles)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(g.ToCytoscape(cycles))
}

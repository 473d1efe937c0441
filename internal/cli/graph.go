package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
	"github.com/aptgraph/aptgraph/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	sourceOpts
	output string
	format string
}

// graphCommand creates the graph command, the tool's main entry point.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: render.FormatDOT}

	cmd := &cobra.Command{
		Use:   "graph [package]",
		Short: "Emit the transitive dependency graph of a package",
		Long: `Emit the transitive dependency graph of a package as Graphviz DOT.

The package index is fetched from the repository URL (or read from a
local file) and the dependency closure of the named package is written
as a digraph. With --format svg or png the graph is rendered to an
image instead; those formats require --output.

Examples:
  aptgraph graph bash -u http://archive.ubuntu.com/ubuntu/dists/focal/main/binary-amd64
  aptgraph graph bash --file ./Packages.gz -o bash.dot
  aptgraph graph -c aptgraph.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return c.runGraph(cmd.Context(), &opts, name)
		},
	}

	opts.registerSourceFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (DOT is also printed to stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg, png")

	return cmd
}

// runGraph executes the fetch → parse → build → serialize flow.
func (c *CLI) runGraph(ctx context.Context, opts *graphOpts, name string) error {
	settings, err := opts.applyConfig()
	if err != nil {
		return err
	}
	if name == "" {
		name = settings.Name
	}
	if opts.output == "" {
		opts.output = settings.Output
	}

	if err := render.ValidateFormat(opts.format); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("no package given: pass one as an argument or set name in the config file")
	}
	if opts.path == "" && opts.url == "" {
		return fmt.Errorf("no index source: pass --url or --file, or set them in the config file")
	}
	if opts.format != render.FormatDOT && opts.output == "" {
		return fmt.Errorf("format %s requires --output", opts.format)
	}

	prog := newProgress(c.Logger)
	text, err := c.loadIndex(ctx, &opts.sourceOpts)
	if err != nil {
		return err
	}
	idx := index.Parse(text)
	prog.done(fmt.Sprintf("Loaded index with %d packages", idx.Len()))

	g, err := depgraph.Build(name, idx)
	if err != nil {
		return err
	}
	c.Logger.Infof("Resolved %d packages with %d dependency edges", g.Len(), g.EdgeCount())

	return c.writeGraph(ctx, g, opts.format, opts.output)
}

// writeGraph serializes the graph in the requested format. DOT output
// goes to stdout and, when set, to the output file; image formats go to
// the output file only.
func (c *CLI) writeGraph(ctx context.Context, g *depgraph.Graph, format, output string) error {
	dot := render.ToDOT(g)

	var data []byte
	switch format {
	case render.FormatDOT:
		fmt.Print(dot)
		data = []byte(dot)
	case render.FormatSVG:
		var err error
		if data, err = render.SVG(ctx, dot); err != nil {
			return err
		}
	case render.FormatPNG:
		var err error
		if data, err = render.PNG(ctx, dot); err != nil {
			return err
		}
	}

	if output == "" {
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	c.Logger.Infof("Wrote graph to %s", output)
	return nil
}

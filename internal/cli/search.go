package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
	"github.com/aptgraph/aptgraph/pkg/render"
)

// searchOpts holds the command-line flags for the search command.
type searchOpts struct {
	sourceOpts
	plain bool
}

// searchCommand creates the search command: find packages in the index
// by substring and optionally graph one of them interactively.
func (c *CLI) searchCommand() *cobra.Command {
	opts := searchOpts{}

	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search the package index and graph a selected package",
		Long: `Search the package index for names containing a pattern.

Matches open in an interactive picker; selecting one prints its
dependency graph as DOT. With --plain the matches are listed without
a picker, for scripting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), &opts, args[0])
		},
	}

	opts.registerSourceFlags(cmd)
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "list matches without the interactive picker")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, opts *searchOpts, pattern string) error {
	if _, err := opts.applyConfig(); err != nil {
		return err
	}
	if opts.path == "" && opts.url == "" {
		return fmt.Errorf("no index source: pass --url or --file, or set them in the config file")
	}

	text, err := c.loadIndex(ctx, &opts.sourceOpts)
	if err != nil {
		return err
	}
	idx := index.Parse(text)

	matches := matchPackages(idx, pattern)
	if len(matches) == 0 {
		printInfo("No packages match %q", pattern)
		return nil
	}

	if opts.plain {
		for _, item := range matches {
			fmt.Println(item.name)
		}
		return nil
	}

	model, err := tea.NewProgram(newPackageListModel(matches)).Run()
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}
	selected := model.(packageListModel).selected
	if selected == "" {
		return nil // user quit without selecting
	}

	g, err := depgraph.Build(selected, idx)
	if err != nil {
		return err
	}
	fmt.Print(render.ToDOT(g))
	return nil
}

// matchPackages returns the index entries whose name contains pattern,
// case-insensitively, in parse order.
func matchPackages(idx *index.Index, pattern string) []packageItem {
	pattern = strings.ToLower(pattern)
	var matches []packageItem
	for _, name := range idx.Names() {
		if strings.Contains(strings.ToLower(name), pattern) {
			matches = append(matches, packageItem{name: name, depCount: len(idx.Deps(name))})
		}
	}
	return matches
}

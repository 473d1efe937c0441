// Package render serializes dependency graphs to Graphviz DOT and
// optionally renders them to image formats.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
)

// Output formats understood by the CLI and the HTTP server.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidateFormat returns an error if format is not a supported output
// format.
func ValidateFormat(format string) error {
	switch format {
	case FormatDOT, FormatSVG, FormatPNG:
		return nil
	default:
		return fmt.Errorf("unknown format: %s (supported: %s, %s, %s)", format, FormatDOT, FormatSVG, FormatPNG)
	}
}

// ToDOT serializes a dependency graph as Graphviz DOT text:
//
//	digraph G {
//	    "bash" -> "libc6";
//	    "bash" -> "libtinfo6";
//	}
//
// One edge statement is emitted per recorded dependency, in graph
// iteration order. Nodes without outgoing edges produce no lines of
// their own; they appear only as edge targets.
//
// Names are wrapped in double quotes without further escaping, so a
// package name containing a double quote would produce invalid DOT.
// Such names do not occur in apt repositories.
func ToDOT(g *depgraph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	for _, pkg := range g.Packages() {
		for _, dep := range g.Deps(pkg) {
			fmt.Fprintf(&b, "    \"%s\" -> \"%s\";\n", pkg, dep)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// SVG renders DOT text to SVG bytes using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return renderAs(ctx, dot, graphviz.SVG)
}

// PNG renders DOT text to PNG bytes using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderAs(ctx, dot, graphviz.PNG)
}

func renderAs(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

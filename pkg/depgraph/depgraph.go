// Package depgraph builds transitive dependency graphs from a parsed
// package index.
package depgraph

import (
	"errors"
	"fmt"

	"github.com/aptgraph/aptgraph/pkg/index"
)

// ErrNotFound is returned by Build when the requested root package does
// not exist in the index.
var ErrNotFound = errors.New("package not found in repository")

// Graph is the transitive dependency graph of a single root package.
//
// Every package expanded during the traversal is a node, including the
// root and packages with no dependencies. Dependency names that do not
// exist in the index are recorded as edge targets but never become
// nodes themselves. Iteration order is visit order, which makes output
// deterministic for a given index.
type Graph struct {
	order []string
	edges map[string][]string
	seen  map[string]map[string]bool
}

func newGraph() *Graph {
	return &Graph{
		edges: make(map[string][]string),
		seen:  make(map[string]map[string]bool),
	}
}

// Build computes the dependency graph reachable from root.
//
// The traversal is depth-first over the index using an explicit
// worklist, so arbitrarily deep dependency chains cannot exhaust the
// call stack. A visited set guarantees each package is expanded at most
// once; cycles and self-dependencies terminate naturally, with edges
// into already-visited packages still recorded.
//
// Build fails with ErrNotFound if root is not in the index. No partial
// graph is returned on failure.
func Build(root string, idx *index.Index) (*Graph, error) {
	if !idx.Has(root) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}

	g := newGraph()
	visited := make(map[string]bool)
	stack := []string{root}

	for len(stack) > 0 {
		pkg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[pkg] {
			continue
		}
		visited[pkg] = true
		g.addNode(pkg)

		deps := idx.Deps(pkg)
		for _, dep := range deps {
			g.addEdge(pkg, dep)
		}
		// Push in reverse so dependencies are expanded in declaration
		// order, matching a recursive depth-first walk.
		for i := len(deps) - 1; i >= 0; i-- {
			if dep := deps[i]; idx.Has(dep) && !visited[dep] {
				stack = append(stack, dep)
			}
		}
	}

	return g, nil
}

// Packages returns all graph nodes in visit order. The root is always
// first.
func (g *Graph) Packages() []string {
	return g.order
}

// Deps returns the direct dependencies recorded for pkg, deduplicated,
// in declaration order. Leaf targets that are not nodes yield nil.
func (g *Graph) Deps(pkg string) []string {
	return g.edges[pkg]
}

// Has reports whether pkg is a node of the graph.
func (g *Graph) Has(pkg string) bool {
	_, ok := g.seen[pkg]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount returns the total number of recorded dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.edges {
		n += len(deps)
	}
	return n
}

func (g *Graph) addNode(pkg string) {
	if _, ok := g.seen[pkg]; ok {
		return
	}
	g.order = append(g.order, pkg)
	g.seen[pkg] = make(map[string]bool)
}

func (g *Graph) addEdge(from, to string) {
	if g.seen[from][to] {
		return
	}
	g.seen[from][to] = true
	g.edges[from] = append(g.edges[from], to)
}

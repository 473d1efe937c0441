package render

import (
	"strings"
	"testing"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
)

func buildGraph(t *testing.T, text, root string) *depgraph.Graph {
	t.Helper()
	g, err := depgraph.Build(root, index.Parse(text))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func TestToDOT_Literal(t *testing.T) {
	text := "Package: bash\nDepends: libc6 (>= 2.15), libtinfo6 (>= 6)\n\n" +
		"Package: libc6\nDepends: libgcc1\n\n" +
		"Package: libtinfo6\nDepends:\n\n"
	g := buildGraph(t, text, "bash")

	dot := ToDOT(g)

	if !strings.HasPrefix(dot, "digraph G {\n") {
		t.Errorf("missing header: %q", dot)
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Errorf("missing closing brace: %q", dot)
	}
	for _, edge := range []string{
		`    "bash" -> "libc6";`,
		`    "bash" -> "libtinfo6";`,
		`    "libc6" -> "libgcc1";`,
	} {
		if !strings.Contains(dot, edge+"\n") {
			t.Errorf("missing edge line %q in:\n%s", edge, dot)
		}
	}
	if got := strings.Count(dot, "->"); got != 3 {
		t.Errorf("expected exactly 3 edges, got %d:\n%s", got, dot)
	}
}

func TestToDOT_LeafNodesInvisible(t *testing.T) {
	g := buildGraph(t, "Package: a\nDepends: b\n\nPackage: b\nDepends:\n\n", "a")

	dot := ToDOT(g)

	// b has no outgoing edges; it must appear only as an edge target.
	if strings.Contains(dot, `"b" ->`) {
		t.Errorf("leaf node emitted edges:\n%s", dot)
	}
	if !strings.Contains(dot, `"a" -> "b";`) {
		t.Errorf("missing a -> b edge:\n%s", dot)
	}
}

func TestToDOT_EmptyGraph(t *testing.T) {
	g := buildGraph(t, "Package: alone\nDepends:\n\n", "alone")

	if got := ToDOT(g); got != "digraph G {\n}\n" {
		t.Errorf("ToDOT = %q, want empty digraph", got)
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

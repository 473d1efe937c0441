package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
)

func writeIndexFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Packages")
	if err := os.WriteFile(path, []byte(testIndex), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunGraph_WritesOutputFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	output := filepath.Join(t.TempDir(), "bash.dot")
	opts := &graphOpts{
		sourceOpts: sourceOpts{path: writeIndexFile(t), noCache: true},
		output:     output,
		format:     "dot",
	}

	if err := c.runGraph(context.Background(), opts, "bash"); err != nil {
		t.Fatalf("runGraph failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, "digraph G {\n") || !strings.Contains(dot, `"bash" -> "libc6";`) {
		t.Errorf("unexpected output:\n%s", dot)
	}
}

func TestRunGraph_UnknownPackage(t *testing.T) {
	c := New(io.Discard, LogInfo)
	opts := &graphOpts{
		sourceOpts: sourceOpts{path: writeIndexFile(t), noCache: true},
		format:     "dot",
	}

	err := c.runGraph(context.Background(), opts, "no-such-package")
	if !errors.Is(err, depgraph.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunGraph_ValidationErrors(t *testing.T) {
	c := New(io.Discard, LogInfo)
	indexPath := writeIndexFile(t)

	tests := []struct {
		name string
		opts graphOpts
		pkg  string
	}{
		{"missing package", graphOpts{sourceOpts: sourceOpts{path: indexPath}, format: "dot"}, ""},
		{"missing source", graphOpts{format: "dot"}, "bash"},
		{"bad format", graphOpts{sourceOpts: sourceOpts{path: indexPath}, format: "gif"}, "bash"},
		{"image without output", graphOpts{sourceOpts: sourceOpts{path: indexPath}, format: "svg"}, "bash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.runGraph(context.Background(), &tt.opts, tt.pkg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRunGraph_ConfigFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	dir := t.TempDir()

	indexPath := writeIndexFile(t)
	output := filepath.Join(dir, "out.dot")
	configPath := filepath.Join(dir, "aptgraph.toml")
	content := "[settings]\nname = \"bash\"\npath = \"" + indexPath + "\"\noutput = \"" + output + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := &graphOpts{
		sourceOpts: sourceOpts{configPath: configPath, noCache: true},
		format:     "dot",
	}
	if err := c.runGraph(context.Background(), opts, ""); err != nil {
		t.Fatalf("runGraph failed: %v", err)
	}

	if _, err := os.Stat(output); err != nil {
		t.Errorf("output from config not written: %v", err)
	}
}

func TestMatchPackages(t *testing.T) {
	idx := index.Parse(testIndex)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"lib", []string{"libc6", "libtinfo6"}},
		{"BASH", []string{"bash"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			var got []string
			for _, item := range matchPackages(idx, tt.pattern) {
				got = append(got, item.name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}
		})
	}
}

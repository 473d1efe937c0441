package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aptgraph/aptgraph/pkg/apt"
	"github.com/aptgraph/aptgraph/pkg/cache"
)

const testIndex = "Package: bash\nDepends: libc6 (>= 2.15), libtinfo6 (>= 6)\n\n" +
	"Package: libc6\nDepends: libgcc1\n\n" +
	"Package: libtinfo6\nDepends:\n\n"

func testServer(t *testing.T) *graphServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Packages")
	if err := os.WriteFile(path, []byte(testIndex), 0o644); err != nil {
		t.Fatal(err)
	}

	return &graphServer{
		cli:    New(io.Discard, LogInfo),
		client: apt.NewClient(cache.NewNullCache(), time.Hour),
		opts:   &serveOpts{sourceOpts: sourceOpts{path: path}},
	}
}

func TestServe_GraphDOT(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/graph/bash", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, edge := range []string{`"bash" -> "libc6";`, `"bash" -> "libtinfo6";`, `"libc6" -> "libgcc1";`} {
		if !strings.Contains(body, edge) {
			t.Errorf("missing edge %q in body:\n%s", edge, body)
		}
	}
}

func TestServe_GraphSVG(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/graph/bash?format=svg", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("expected SVG markup in body")
	}
}

func TestServe_GraphNotFound(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/graph/no-such-package", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServe_BadFormat(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/graph/bash?format=pdf", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServe_Healthz(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServe_RequestIDHeader(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestServe_IndexUnavailable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	srv := &graphServer{
		cli:    New(io.Discard, LogInfo),
		client: apt.NewClient(cache.NewNullCache(), time.Hour),
		opts:   &serveOpts{sourceOpts: sourceOpts{url: upstream.URL}},
	}

	req := httptest.NewRequest(http.MethodGet, "/graph/bash", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

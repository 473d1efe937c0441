package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/apt"
	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
	"github.com/aptgraph/aptgraph/pkg/render"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	sourceOpts
	addr string
}

// serveCommand creates the serve command: a small HTTP server that
// answers dependency-graph queries against one repository.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency graphs over HTTP",
		Long: `Serve dependency graphs over HTTP.

Endpoints:
  GET /healthz              liveness probe
  GET /graph/{name}         DOT graph for a package (?format=dot|svg)

The package index is fetched through the configured cache, so repeated
queries do not re-download it. Use --redis to share the cache between
multiple instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	opts.registerSourceFlags(cmd)
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", opts.addr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	if _, err := opts.applyConfig(); err != nil {
		return err
	}
	if opts.path == "" && opts.url == "" {
		return fmt.Errorf("no index source: pass --url or --file, or set them in the config file")
	}

	backend, err := c.newCache(ctx, opts.noCache, opts.redisAddr)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := &graphServer{
		cli:    c,
		client: apt.NewClient(backend, apt.DefaultCacheTTL),
		opts:   opts,
	}

	server := &http.Server{
		Addr:        opts.addr,
		Handler:     srv.router(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("Listening on %s", opts.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// graphServer holds the HTTP handler state.
type graphServer struct {
	cli    *CLI
	client *apt.Client
	opts   *serveOpts
}

// router builds the chi routing tree with request-ID and logging
// middleware.
func (s *graphServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Get("/graph/{name}", s.handleGraph)

	return r
}

// requestID tags every request with a UUID, echoed in the response and
// available to the logging middleware.
func (s *graphServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func (s *graphServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.cli.Logger.Info("request",
			"id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// handleGraph builds and serves the dependency graph of one package.
func (s *graphServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatDOT
	}
	if format != render.FormatDOT && format != render.FormatSVG {
		http.Error(w, fmt.Sprintf("unsupported format: %s", format), http.StatusBadRequest)
		return
	}

	idx, err := s.loadIndex(r.Context())
	if err != nil {
		s.cli.Logger.Errorf("load index: %v", err)
		http.Error(w, "package index unavailable", http.StatusBadGateway)
		return
	}

	g, err := depgraph.Build(name, idx)
	if errors.Is(err, depgraph.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dot := render.ToDOT(g)
	switch format {
	case render.FormatSVG:
		svg, err := render.SVG(r.Context(), dot)
		if err != nil {
			s.cli.Logger.Errorf("render svg: %v", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	default:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		fmt.Fprint(w, dot)
	}
}

// loadIndex fetches and parses the index for a request. The fetch goes
// through the cache backend, so only the first request (and refreshes
// after TTL expiry) touch the network.
func (s *graphServer) loadIndex(ctx context.Context) (*index.Index, error) {
	var text string
	var err error
	if s.opts.path != "" {
		text, err = apt.ReadIndexFile(s.opts.path)
	} else {
		text, err = s.client.FetchIndex(ctx, s.opts.url, false)
	}
	if err != nil {
		return nil, err
	}
	return index.Parse(text), nil
}

// requestIDKey is the context key for the per-request UUID.
type ctxKey int

const requestIDKey ctxKey = 0

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

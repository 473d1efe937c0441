// Package cli implements the aptgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/apt"
	"github.com/aptgraph/aptgraph/pkg/buildinfo"
	"github.com/aptgraph/aptgraph/pkg/cache"
	"github.com/aptgraph/aptgraph/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "aptgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Aptgraph visualizes apt package dependencies",
		Long:         `Aptgraph fetches the package index of an apt repository, resolves the transitive dependencies of a package, and emits the result as a Graphviz digraph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared command plumbing
// =============================================================================

// sourceOpts are the flags shared by every command that needs a package
// index: where to get it and how to cache it.
type sourceOpts struct {
	configPath string // optional TOML config file
	url        string // repository base URL
	path       string // local Packages file, overrides url
	redisAddr  string // redis cache backend (host:port)
	noCache    bool
	refresh    bool
}

// registerSourceFlags wires the shared index-source flags onto cmd.
func (o *sourceOpts) registerSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&o.url, "url", "u", "", "repository base URL containing Packages.gz")
	cmd.Flags().StringVar(&o.path, "file", "", "local Packages or Packages.gz file (skips the network)")
	cmd.Flags().StringVar(&o.redisAddr, "redis", "", "redis address for a shared cache (host:port)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached index data")
}

// applyConfig loads the config file, if any, and fills in unset flag
// values from it. It returns the settings so commands can pick up
// fields the flags do not cover (name, output).
func (o *sourceOpts) applyConfig() (config.Settings, error) {
	if o.configPath == "" {
		return config.Settings{}, nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Settings{}, err
	}
	if o.url == "" {
		o.url = cfg.Settings.URL
	}
	if o.path == "" {
		o.path = cfg.Settings.Path
	}
	return cfg.Settings, nil
}

// loadIndex retrieves the raw index text from the configured source:
// a local file when set, the repository URL otherwise.
func (c *CLI) loadIndex(ctx context.Context, opts *sourceOpts) (string, error) {
	if opts.path != "" {
		c.Logger.Debugf("Reading index from %s", opts.path)
		return apt.ReadIndexFile(opts.path)
	}

	backend, err := c.newCache(ctx, opts.noCache, opts.redisAddr)
	if err != nil {
		return "", err
	}
	defer backend.Close()

	c.Logger.Debugf("Fetching index from %s", opts.url)
	client := apt.NewClient(backend, apt.DefaultCacheTTL)
	return client.FetchIndex(ctx, opts.url, opts.refresh)
}

// newCache selects a cache backend: null when disabled, redis when an
// address is given, the XDG file cache otherwise. A missing home
// directory quietly degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard
// (~/.cache/aptgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

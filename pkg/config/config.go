// Package config loads aptgraph settings from a TOML file.
//
// The file carries the same four settings the tool accepts as flags, so
// a repeated analysis can be pinned down in one place:
//
//	[settings]
//	url    = "http://archive.ubuntu.com/ubuntu/dists/focal/main/binary-amd64"
//	name   = "bash"
//	output = "bash.dot"
//	path   = ""   # optional local Packages file, skips the network
//
// Command-line flags override file values; the file is optional.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Settings are the user-facing knobs for one graph run.
type Settings struct {
	// Path is an optional local Packages or Packages.gz file. When set,
	// the index is read from disk and URL is ignored.
	Path string `toml:"path"`

	// Name is the root package to graph.
	Name string `toml:"name"`

	// Output is the file the DOT text (or rendered image) is written
	// to, in addition to stdout. Empty means stdout only.
	Output string `toml:"output"`

	// URL is the repository base URL containing Packages.gz.
	URL string `toml:"url"`
}

// Config is the top-level TOML document.
type Config struct {
	Settings Settings `toml:"settings"`
}

// Load reads and decodes the TOML config at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

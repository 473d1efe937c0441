// Package index parses apt repository package indexes.
//
// An index file (conventionally named "Packages") is a sequence of
// control stanzas separated by blank lines. Each stanza is a list of
// "Key: Value" lines describing one binary package:
//
//	Package: bash
//	Version: 5.1-6ubuntu1
//	Depends: base-files (>= 2.1.12), debianutils (>= 5.6-0.1)
//
// Parse reduces each stanza to the package name and its direct
// dependency names. Version constraints and alternative markers are
// discarded by truncating every Depends entry at its first space, so
// "libc6 (>= 2.15)" becomes "libc6" and "awk | gawk" becomes "awk".
// This matches what apt repositories publish well enough for graphing
// and is deliberately not a full dependency-expression parser.
package index

import (
	"strings"
)

// Field names recognized while scanning stanzas.
const (
	fieldPackage = "Package"
	fieldDepends = "Depends"
)

// Index maps package names to their direct dependency names, preserving
// the order in which stanzas appeared in the source text.
//
// Dependency lists keep declaration order and may contain duplicates;
// deduplication happens later when the graph is built.
type Index struct {
	names []string
	deps  map[string][]string
}

// Parse converts raw index text into an Index.
//
// Stanzas without a Package field are dropped. Lines without a colon are
// ignored. Both behaviors are deliberate leniency: real-world index
// files occasionally carry noise and a partial index is more useful
// than an error. A trailing stanza not followed by a blank line is
// still committed.
//
// Lines are split on newlines directly rather than scanned, so there is
// no cap on line length: a Depends field spanning megabytes parses like
// any other.
func Parse(text string) *Index {
	idx := &Index{deps: make(map[string][]string)}

	stanza := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			idx.commit(stanza)
			stanza = make(map[string]string)
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		stanza[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	idx.commit(stanza)

	return idx
}

// Has reports whether name is a known package.
func (x *Index) Has(name string) bool {
	_, ok := x.deps[name]
	return ok
}

// Deps returns the direct dependency names of pkg in declaration order.
// Unknown packages yield nil.
func (x *Index) Deps(pkg string) []string {
	return x.deps[pkg]
}

// Names returns all package names in parse order.
func (x *Index) Names() []string {
	return x.names
}

// Len returns the number of packages in the index.
func (x *Index) Len() int {
	return len(x.names)
}

// commit adds a completed stanza to the index. A later stanza for the
// same package replaces its dependencies but keeps its original
// position.
func (x *Index) commit(stanza map[string]string) {
	name, ok := stanza[fieldPackage]
	if !ok {
		return
	}
	if _, seen := x.deps[name]; !seen {
		x.names = append(x.names, name)
	}
	x.deps[name] = splitDepends(stanza[fieldDepends])
}

// splitDepends parses a Depends field value into dependency names.
// Entries are comma-separated; each entry is trimmed and truncated at
// its first space, which strips version constraints such as "(>= 2.15)"
// and keeps only the first alternative of "a | b" choices.
func splitDepends(value string) []string {
	if value == "" {
		return nil
	}
	entries := strings.Split(value, ",")
	deps := make([]string, 0, len(entries))
	for _, entry := range entries {
		name, _, _ := strings.Cut(strings.TrimSpace(entry), " ")
		deps = append(deps, name)
	}
	return deps
}

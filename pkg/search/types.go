// Package search finds files by name under a set of root directories.
//
// The default path is a bounded depth-first walk. An optional Accelerator
// delegates to an external indexed search tool first and falls back to the
// walk on any failure.
package search

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultMaxDepth is the depth ceiling below each root (root = 0).
	DefaultMaxDepth = 5
	// DefaultMaxResults applies when Options.MaxResults is not positive.
	DefaultMaxResults = 100
	// HiddenPrefix marks hidden entries.
	HiddenPrefix = "."
)

// Kind distinguishes files from directories.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// MarshalText renders the kind as "file" or "directory".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "file" or "directory".
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*k = KindFile
	case "directory":
		*k = KindDirectory
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

// FileRecord describes one matching filesystem entry.
type FileRecord struct {
	Path       string    `json:"path" yaml:"path"`
	Name       string    `json:"name" yaml:"name"`
	SizeBytes  uint64    `json:"size_bytes" yaml:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
	Kind       Kind      `json:"kind" yaml:"kind"`
	Extension  string    `json:"extension,omitempty" yaml:"extension,omitempty"`
	IsHidden   bool      `json:"is_hidden" yaml:"is_hidden"`
}

// Result is the outcome of one search call. A newer Result replaces an older
// one wholesale.
type Result struct {
	Records       []FileRecord `json:"records" yaml:"records"`
	TotalCount    uint         `json:"total_count" yaml:"total_count"`
	ElapsedMillis uint         `json:"elapsed_millis" yaml:"elapsed_millis"`
	Accelerated   bool         `json:"accelerated" yaml:"accelerated"`
}

// Options are the per-call search parameters.
type Options struct {
	Roots           []string
	Query           string
	MaxResults      int
	IncludeHidden   bool
	ExcludePatterns []string
	MaxDepth        int
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix)
}

func isExcluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func matchesQuery(name, lowerQuery string) bool {
	return lowerQuery != "" && strings.Contains(strings.ToLower(name), lowerQuery)
}

func extensionOf(name string, kind Kind) string {
	if kind == KindDirectory {
		return ""
	}
	return strings.ToLower(filepath.Ext(name))
}

package files

import (
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/lvim-tech/qlfind/pkg/search"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

// Config represents files module configuration
type Config struct {
	Enabled            bool     `mapstructure:"enabled"`
	SearchRoots        string   `mapstructure:"search_roots"`
	MaxResults         int      `mapstructure:"max_results"`
	IncludeHidden      bool     `mapstructure:"include_hidden"`
	ExcludePatterns    string   `mapstructure:"exclude_patterns"`
	UseAccelerated     bool     `mapstructure:"use_accelerated"`
	AcceleratedCommand string   `mapstructure:"accelerated_command"`
	AcceleratedArgs    []string `mapstructure:"accelerated_args"`
	Opener             string   `mapstructure:"opener"`
	CommandTimeout     int      `mapstructure:"command_timeout"`
}

// DefaultConfig returns default files configuration
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		SearchRoots:        "~",
		MaxResults:         search.DefaultMaxResults,
		IncludeHidden:      false,
		ExcludePatterns:    "node_modules,.git,__pycache__,target,dist,build",
		UseAccelerated:     false,
		AcceleratedCommand: "es",
		AcceleratedArgs:    []string{"-n", "{limit}", "-size", "-dm", "-tsv", "{query}"},
		Opener:             "xdg-open",
		CommandTimeout:     10,
	}
}

// LoadConfig decodes a [commands.files] table over the defaults. A table
// that does not decode yields the defaults.
func LoadConfig(raw map[string]interface{}) Config {
	cfg := DefaultConfig()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           &cfg,
	})
	if err != nil {
		return DefaultConfig()
	}
	if err := decoder.Decode(raw); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Roots returns the configured search roots with ~ expanded.
func (c Config) Roots() []string {
	roots := utils.SplitList(c.SearchRoots)
	for i, root := range roots {
		roots[i] = utils.ExpandHomeDir(root)
	}
	return roots
}

// SearchOptions builds the per-call search options for query.
func (c Config) SearchOptions(query string) search.Options {
	return search.Options{
		Roots:           c.Roots(),
		Query:           query,
		MaxResults:      c.MaxResults,
		IncludeHidden:   c.IncludeHidden,
		ExcludePatterns: utils.SplitList(c.ExcludePatterns),
	}
}

// Timeout is the limit for every external command the module runs.
func (c Config) Timeout() time.Duration {
	if c.CommandTimeout <= 0 {
		return utils.DefaultTimeout
	}
	return time.Duration(c.CommandTimeout) * time.Second
}

// Accelerator returns the indexed search tool, or nil when disabled.
func (c Config) Accelerator() *search.Accelerator {
	if !c.UseAccelerated || c.AcceleratedCommand == "" {
		return nil
	}
	return search.NewAccelerator(c.AcceleratedCommand, c.AcceleratedArgs, c.Timeout())
}

package kill

import (
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/lvim-tech/qlfind/pkg/process"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

// Config represents kill module configuration
type Config struct {
	Enabled          bool     `mapstructure:"enabled"`
	ListFormat       string   `mapstructure:"list_format"`
	Encoding         string   `mapstructure:"encoding"`
	ExcludeProcesses []string `mapstructure:"exclude_processes"`
	ConfirmKill      bool     `mapstructure:"confirm_kill"`
	RefreshInterval  int      `mapstructure:"refresh_interval"`
	CommandTimeout   int      `mapstructure:"command_timeout"`
}

// DefaultConfig returns default kill configuration
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		ListFormat: string(process.FormatAuto),
		Encoding:   "utf-8",
		ExcludeProcesses: []string{
			"systemd",
			"kthreadd",
		},
		ConfirmKill:     true,
		RefreshInterval: 2,
		CommandTimeout:  10,
	}
}

// LoadConfig decodes a [commands.kill] table over the defaults.
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

// ListerOptions converts the config into process listing options.
func (c Config) ListerOptions() process.Options {
	timeout := utils.DefaultTimeout
	if c.CommandTimeout > 0 {
		timeout = time.Duration(c.CommandTimeout) * time.Second
	}

	return process.Options{
		Format:   process.Format(c.ListFormat),
		Encoding: c.Encoding,
		Exclude:  c.ExcludeProcesses,
		Timeout:  timeout,
	}
}

// Interval is the refresh period for watch mode.
func (c Config) Interval() time.Duration {
	if c.RefreshInterval <= 0 {
		return process.DefaultRefreshInterval
	}
	return time.Duration(c.RefreshInterval) * time.Second
}

// Package config provides configuration management for qlfind.
// It handles loading, merging, and accessing configuration from default and user config files.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lvim-tech/qlfind/internal/fileutil"
	"github.com/lvim-tech/qlfind/pkg/logger"
)

//go:embed default.toml
var defaultConfigData string

// Config holds the merged configuration
type Config struct {
	DefaultLauncher string             `toml:"default_launcher"`
	LogLevel        string             `toml:"log_level"`
	ModuleOrder     []string           `toml:"module_order"`
	Launchers       LauncherConfig     `toml:"launchers"`
	Notifications   NotificationConfig `toml:"notifications"`

	// Commands holds raw per-module tables; modules decode their own section.
	Commands map[string]map[string]interface{} `toml:"commands"`
}

// NotificationConfig controls desktop notifications
type NotificationConfig struct {
	Enabled        bool   `toml:"enabled"`
	Tool           string `toml:"tool"`
	Timeout        int    `toml:"timeout"`
	Urgency        string `toml:"urgency"`
	ShowInTerminal bool   `toml:"show_in_terminal"`
}

// NotificationConfigFile is read from TOML (pointers for optional fields)
type NotificationConfigFile struct {
	Enabled        *bool   `toml:"enabled"`
	Tool           *string `toml:"tool"`
	Timeout        *int    `toml:"timeout"`
	Urgency        *string `toml:"urgency"`
	ShowInTerminal *bool   `toml:"show_in_terminal"`
}

// ConfigFile is the on-disk shape of a user or system config
type ConfigFile struct {
	DefaultLauncher *string                           `toml:"default_launcher"`
	LogLevel        *string                           `toml:"log_level"`
	ModuleOrder     []string                          `toml:"module_order"`
	Launchers       LauncherConfig                    `toml:"launchers"`
	Notifications   NotificationConfigFile            `toml:"notifications"`
	Commands        map[string]map[string]interface{} `toml:"commands"`
}

// GetUserConfigPath returns the path of the user config
func GetUserConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "qlfind", "config.toml")
}

// GetSystemConfigPath returns the path of the system config
func GetSystemConfigPath() string {
	return "/etc/qlfind/config.toml"
}

// Load reads defaults merged with the user config, or the system config when
// no user config exists. A broken config file is reported and ignored.
func Load() (*Config, error) {
	return load(GetUserConfigPath(), GetSystemConfigPath())
}

func load(userPath, systemPath string) (*Config, error) {
	defaultCfg, err := loadDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	for _, path := range []string{userPath, systemPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}

		fileCfg, err := loadConfigFromFile(path)
		if err != nil {
			logger.Default().Warnf("failed to load config %s: %v (using defaults)", path, err)
			return defaultCfg, nil
		}
		return mergeConfigs(defaultCfg, fileCfg), nil
	}

	return defaultCfg, nil
}

// loadDefaultConfig decodes the embedded default config
func loadDefaultConfig() (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(defaultConfigData, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromFile decodes a config file
func loadConfigFromFile(path string) (*ConfigFile, error) {
	var cfg ConfigFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs merges a config file over defaults (file values win)
func mergeConfigs(defaultCfg *Config, fileCfg *ConfigFile) *Config {
	merged := *defaultCfg

	if fileCfg.DefaultLauncher != nil && *fileCfg.DefaultLauncher != "" {
		merged.DefaultLauncher = *fileCfg.DefaultLauncher
	}
	if fileCfg.LogLevel != nil && *fileCfg.LogLevel != "" {
		merged.LogLevel = *fileCfg.LogLevel
	}
	if len(fileCfg.ModuleOrder) > 0 {
		merged.ModuleOrder = fileCfg.ModuleOrder
	}

	mergeLauncherConfigs(&merged.Launchers, &fileCfg.Launchers)
	mergeNotificationConfig(&merged.Notifications, &fileCfg.Notifications)
	merged.Commands = mergeCommands(defaultCfg.Commands, fileCfg.Commands)

	return &merged
}

func mergeNotificationConfig(merged *NotificationConfig, user *NotificationConfigFile) {
	if user.Enabled != nil {
		merged.Enabled = *user.Enabled
	}
	if user.Tool != nil && *user.Tool != "" {
		merged.Tool = *user.Tool
	}
	if user.Timeout != nil {
		merged.Timeout = *user.Timeout
	}
	if user.Urgency != nil && *user.Urgency != "" {
		merged.Urgency = *user.Urgency
	}
	if user.ShowInTerminal != nil {
		merged.ShowInTerminal = *user.ShowInTerminal
	}
}

// mergeCommands overrides default module settings key by key
func mergeCommands(defaults, user map[string]map[string]interface{}) map[string]map[string]interface{} {
	merged := make(map[string]map[string]interface{}, len(defaults))

	for name, section := range defaults {
		copied := make(map[string]interface{}, len(section))
		for k, v := range section {
			copied[k] = v
		}
		merged[name] = copied
	}

	for name, section := range user {
		if merged[name] == nil {
			merged[name] = make(map[string]interface{}, len(section))
		}
		for k, v := range section {
			merged[name][k] = v
		}
	}

	return merged
}

// GetDefaultLauncher returns the configured launcher name
func (c *Config) GetDefaultLauncher() string {
	if c.DefaultLauncher == "" {
		return "rofi"
	}
	return c.DefaultLauncher
}

// GetModuleOrder returns the main menu order
func (c *Config) GetModuleOrder() []string {
	return c.ModuleOrder
}

// GetNotificationConfig returns notification settings
func (c *Config) GetNotificationConfig() NotificationConfig {
	return c.Notifications
}

// GetCommandConfig returns the raw table for a module (never nil)
func (c *Config) GetCommandConfig(name string) map[string]interface{} {
	if section, ok := c.Commands[name]; ok && section != nil {
		return section
	}
	return map[string]interface{}{}
}

// GetFilesConfig returns the raw [commands.files] table
func (c *Config) GetFilesConfig() map[string]interface{} {
	return c.GetCommandConfig("files")
}

// GetKillConfig returns the raw [commands.kill] table
func (c *Config) GetKillConfig() map[string]interface{} {
	return c.GetCommandConfig("kill")
}

// IsCommandEnabled reports whether a module is enabled (default true)
func (c *Config) IsCommandEnabled(name string) bool {
	section, ok := c.Commands[name]
	if !ok {
		return true
	}
	if enabled, ok := section["enabled"].(bool); ok {
		return enabled
	}
	return true
}

// InitUserConfig writes the default config to the user config path
func InitUserConfig() error {
	return initConfigAt(GetUserConfigPath())
}

func initConfigAt(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	if err := fileutil.LockAndWrite(path, []byte(defaultConfigData)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigContent returns the embedded default config
func GetDefaultConfigContent() string {
	return defaultConfigData
}

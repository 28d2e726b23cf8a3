package config

// LauncherConfig holds per-launcher settings
type LauncherConfig struct {
	Dmenu  LauncherCommand `toml:"dmenu"`
	Rofi   LauncherCommand `toml:"rofi"`
	Fzf    LauncherCommand `toml:"fzf"`
	Bemenu LauncherCommand `toml:"bemenu"`
	Fuzzel LauncherCommand `toml:"fuzzel"`
	Tui    LauncherCommand `toml:"tui"`
}

// LauncherCommand describes how a launcher is started
type LauncherCommand struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// GetLauncherConfig returns settings for a launcher by name
func (c *Config) GetLauncherConfig(name string) *LauncherCommand {
	switch name {
	case "dmenu":
		return &c.Launchers.Dmenu
	case "rofi":
		return &c.Launchers.Rofi
	case "fzf":
		return &c.Launchers.Fzf
	case "bemenu":
		return &c.Launchers.Bemenu
	case "fuzzel":
		return &c.Launchers.Fuzzel
	case "tui":
		return &c.Launchers.Tui
	default:
		return nil
	}
}

// mergeLauncherConfigs merges launcher configs
func mergeLauncherConfigs(merged *LauncherConfig, user *LauncherConfig) {
	mergeLauncherCommand(&merged.Dmenu, &user.Dmenu)
	mergeLauncherCommand(&merged.Rofi, &user.Rofi)
	mergeLauncherCommand(&merged.Fzf, &user.Fzf)
	mergeLauncherCommand(&merged.Bemenu, &user.Bemenu)
	mergeLauncherCommand(&merged.Fuzzel, &user.Fuzzel)
	mergeLauncherCommand(&merged.Tui, &user.Tui)
}

func mergeLauncherCommand(merged *LauncherCommand, user *LauncherCommand) {
	if user.Command != "" {
		merged.Command = user.Command
	}
	if len(user.Args) > 0 {
		merged.Args = user.Args
	}
}

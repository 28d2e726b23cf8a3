// Package launcher provides an abstraction layer for menu programs.
// It supports rofi, dmenu, fzf, bemenu and fuzzel as external processes, plus
// a built-in terminal menu, behind one Show call.
package launcher

import (
	"fmt"
	"os"

	"github.com/lvim-tech/qlfind/pkg/config"
)

// Launcher shows a list of options and returns the chosen line. Launchers
// that accept free text return the typed text when nothing matches.
type Launcher interface {
	Show(options []string, prompt string) (string, error)
	Name() string
}

// Names lists the supported launchers in detection order.
var Names = []string{"rofi", "dmenu", "fzf", "bemenu", "fuzzel", "tui"}

// New creates the launcher called name using its section of cfg.
func New(name string, cfg *config.Config) (Launcher, error) {
	launcherCfg := cfg.GetLauncherConfig(name)
	if launcherCfg == nil {
		return nil, fmt.Errorf("%w: unknown launcher %q", ErrNoLauncher, name)
	}

	if name == "tui" {
		return NewTUI(os.Stdin, os.Stderr), nil
	}

	preset := presets[name]
	command := launcherCfg.Command
	if command == "" {
		command = name
	}

	return newExternal(name, command, launcherCfg.Args, preset), nil
}

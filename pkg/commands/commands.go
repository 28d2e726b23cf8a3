// Package commands provides the core command system for qlfind.
// It defines the Command type, CommandResult for navigation control,
// and the LauncherContext interface commands run against.
package commands

import (
	"errors"

	"github.com/lvim-tech/qlfind/pkg/config"
	"github.com/lvim-tech/qlfind/pkg/logger"
)

// BackOption is the menu entry that returns to the previous menu.
const BackOption = "← Back"

// ErrBack tells the caller to show its menu again.
var ErrBack = errors.New("back")

// CommandResult represents the result of command execution
type CommandResult struct {
	Success bool
	Error   error
}

// Command is one entry of the main menu
type Command struct {
	Name        string
	Description string
	Run         func(LauncherContext) CommandResult
}

// LauncherContext is what a command needs from the running program
type LauncherContext interface {
	Show(options []string, prompt string) (string, error)
	Config() *config.Config
	Logger() *logger.Logger
	// Args holds the arguments given after the command name on the CLI.
	Args() []string
	// IsDirectLaunch is true when the command was started without the main menu.
	IsDirectLaunch() bool
}

// IsBack reports whether a result asks to go back to the previous menu.
func (r CommandResult) IsBack() bool {
	return errors.Is(r.Error, ErrBack)
}

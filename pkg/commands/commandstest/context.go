// Package commandstest provides a scripted LauncherContext for command tests.
package commandstest

import (
	"fmt"
	"strings"

	"github.com/lvim-tech/qlfind/pkg/config"
	"github.com/lvim-tech/qlfind/pkg/launcher"
	"github.com/lvim-tech/qlfind/pkg/logger"
)

// Step answers one Show call.
type Step func(options []string, prompt string) (string, error)

// Choose picks the first option containing s, or returns s as typed text
// when none does.
func Choose(s string) Step {
	return func(options []string, _ string) (string, error) {
		for _, option := range options {
			if strings.Contains(option, s) {
				return option, nil
			}
		}
		return s, nil
	}
}

// Type returns text as if the user typed it without picking an option.
func Type(text string) Step {
	return func([]string, string) (string, error) {
		return text, nil
	}
}

// Cancel behaves like ESC.
func Cancel() Step {
	return func([]string, string) (string, error) {
		return "", launcher.ErrCancelled
	}
}

// Menu records one Show call.
type Menu struct {
	Prompt  string
	Options []string
}

// Context is a commands.LauncherContext driven by a list of steps.
type Context struct {
	Cfg    *config.Config
	Log    *logger.Logger
	Argv   []string
	Direct bool
	Steps  []Step

	Shown []Menu
}

// New creates a Context with an empty config and the given steps.
func New(steps ...Step) *Context {
	return &Context{
		Cfg:   &config.Config{Commands: map[string]map[string]interface{}{}},
		Log:   logger.Discard(),
		Steps: steps,
	}
}

func (c *Context) Show(options []string, prompt string) (string, error) {
	c.Shown = append(c.Shown, Menu{Prompt: prompt, Options: append([]string(nil), options...)})
	if len(c.Steps) == 0 {
		return "", fmt.Errorf("unexpected menu %q", prompt)
	}
	step := c.Steps[0]
	c.Steps = c.Steps[1:]
	return step(options, prompt)
}

func (c *Context) Config() *config.Config {
	return c.Cfg
}

func (c *Context) Logger() *logger.Logger {
	return c.Log
}

func (c *Context) Args() []string {
	return c.Argv
}

func (c *Context) IsDirectLaunch() bool {
	return c.Direct
}

package launcher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// preset holds how a menu program takes its prompt and which extra
// arguments it always needs.
type preset struct {
	fixed  []string
	prompt func(prompt string) []string
	// tty launchers draw on stderr, so it must stay attached to the terminal
	tty bool
}

var presets = map[string]preset{
	"rofi": {
		fixed:  []string{"-dmenu"},
		prompt: func(p string) []string { return []string{"-p", p} },
	},
	"dmenu": {
		prompt: func(p string) []string { return []string{"-p", p} },
	},
	"bemenu": {
		prompt: func(p string) []string { return []string{"-p", p} },
	},
	"fzf": {
		prompt: func(p string) []string { return []string{"--prompt", p + "> "} },
		tty:    true,
	},
	"fuzzel": {
		prompt: func(p string) []string { return []string{"--prompt", p + ": "} },
	},
}

type execFunc func(name string, args []string, stdin io.Reader, stderr io.Writer) ([]byte, error)

// External runs a dmenu-compatible program: options on stdin, the
// selection on stdout.
type External struct {
	name    string
	command string
	args    []string
	preset  preset
	exec    execFunc
}

func newExternal(name, command string, args []string, p preset) *External {
	return &External{
		name:    name,
		command: command,
		args:    args,
		preset:  p,
		exec:    runMenu,
	}
}

func (e *External) Name() string {
	return e.name
}

// Show pipes options to the program and returns the first line it prints.
func (e *External) Show(options []string, prompt string) (string, error) {
	var stderr io.Writer
	if e.preset.tty {
		stderr = os.Stderr
	}

	output, err := e.exec(e.command, e.buildArgs(prompt), strings.NewReader(strings.Join(options, "\n")), stderr)
	return e.selection(output, err)
}

func (e *External) buildArgs(prompt string) []string {
	args := append([]string{}, e.args...)
	args = append(args, e.preset.fixed...)
	if e.preset.prompt != nil && prompt != "" {
		args = append(args, e.preset.prompt(prompt)...)
	}
	return args
}

func (e *External) selection(output []byte, err error) (string, error) {
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// 1 is ESC for the dmenu family, 130 is ESC/ctrl-c for fzf
			switch exitErr.ExitCode() {
			case 1, 130:
				return "", ErrCancelled
			}
			return "", fmt.Errorf("%s exited with error: %w", e.name, err)
		}
		return "", fmt.Errorf("failed to start %s: %w", e.name, err)
	}

	line, _, _ := strings.Cut(string(output), "\n")
	result := strings.TrimSpace(line)
	if result == "" {
		return "", ErrCancelled
	}

	return result, nil
}

func runMenu(name string, args []string, stdin io.Reader, stderr io.Writer) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stderr = stderr
	return cmd.Output()
}

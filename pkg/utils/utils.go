// Package utils provides common utility functions for qlfind commands.
// It includes helpers for path expansion, command execution and terminal
// detection.
package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ============================================================================
// Command Utilities
// ============================================================================

// CommandExists checks if a command exists in PATH
func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// RunCommandBackground starts a command without waiting for it
func RunCommandBackground(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// ============================================================================
// File System Utilities
// ============================================================================

// GetHomeDir returns home directory
func GetHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// ExpandHomeDir expands ~ and environment variables in paths
func ExpandHomeDir(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = filepath.Join(GetHomeDir(), path[1:])
	}
	return os.ExpandEnv(path)
}

// SplitList splits a comma-separated preference value, trimming blanks
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ============================================================================
// Terminal Detection
// ============================================================================

// IsTerminal checks if program is running in a terminal
func IsTerminal() bool {
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	if stdinInfo.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		return false
	}
	tty.Close()

	return true
}

// Package utils provides notification utilities for qlfind.
// Supports configurable notification behavior via NotificationConfig.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/lvim-tech/qlfind/pkg/config"
)

// NotifyWithConfig sends a notification using the provided config
func NotifyWithConfig(cfg *config.NotificationConfig, title, message string) {
	if cfg == nil || !cfg.Enabled {
		return
	}

	// In a terminal the message goes to stdout instead of the desktop
	if cfg.ShowInTerminal && IsTerminal() {
		fmt.Printf("[%s] %s\n", title, message)
		return
	}

	sendNotification(resolveTool(cfg.Tool), title, message, cfg.Timeout, cfg.Urgency, "normal")
}

// ShowErrorNotificationWithConfig sends an error notification using the provided config
func ShowErrorNotificationWithConfig(cfg *config.NotificationConfig, title, message string) {
	if cfg == nil || !cfg.Enabled {
		return
	}

	if cfg.ShowInTerminal && IsTerminal() {
		fmt.Fprintf(os.Stderr, "[ERROR] [%s] %s\n", title, message)
		return
	}

	// Errors are always critical
	sendNotification(resolveTool(cfg.Tool), title, message, cfg.Timeout, "critical", "critical")
}

// ============================================================================
// Internal Helper Functions
// ============================================================================

func resolveTool(tool string) string {
	if tool == "" || tool == "auto" {
		return detectNotificationTool()
	}
	return tool
}

// detectNotificationTool detects which notification tool is available
func detectNotificationTool() string {
	if CommandExists("dunstify") {
		return "dunstify"
	}
	if CommandExists("notify-send") {
		return "notify-send"
	}
	return ""
}

// notificationArgs builds the argument list for the given tool
func notificationArgs(tool, title, message string, timeout int, urgency, fallbackUrgency string) []string {
	if urgency == "" {
		urgency = fallbackUrgency
	}
	if timeout <= 0 {
		timeout = 5000
	}

	switch tool {
	case "dunstify", "notify-send":
		return []string{"-u", urgency, "-t", strconv.Itoa(timeout), title, message}
	default:
		return nil
	}
}

// sendNotification sends a notification using the specified tool
func sendNotification(tool, title, message string, timeout int, urgency, fallbackUrgency string) {
	args := notificationArgs(tool, title, message, timeout, urgency, fallbackUrgency)
	if args == nil {
		return
	}

	cmd := exec.Command(tool, args...)
	cmd.Env = os.Environ()
	if err := cmd.Start(); err == nil {
		go cmd.Wait()
	}
}

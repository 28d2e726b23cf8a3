// Package kill provides process management and killing functionality for qlfind.
// It displays running processes and terminates them after confirmation.
package kill

import (
	"context"
	"fmt"
	"strings"

	"github.com/lvim-tech/qlfind/pkg/commands"
	"github.com/lvim-tech/qlfind/pkg/config"
	"github.com/lvim-tech/qlfind/pkg/logger"
	"github.com/lvim-tech/qlfind/pkg/process"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

func init() {
	commands.Register(commands.Command{
		Name:        "kill",
		Description: "Kill processes",
		Run:         Run,
	})
}

// Manager lists and terminates processes.
type Manager interface {
	List(ctx context.Context) ([]process.ProcessRecord, error)
	Terminate(ctx context.Context, pid string) error
	TerminateByName(ctx context.Context, name string) error
}

var newManager = func(opts process.Options, log *logger.Logger) Manager {
	return process.NewLister(opts, log)
}

const (
	actionKill    = "Kill this process"
	actionKillAll = "Kill all named %s"
	confirmYes    = "Yes"
	confirmNo     = "No"
)

func Run(ctx commands.LauncherContext) commands.CommandResult {
	cfg := LoadConfig(ctx.Config().GetKillConfig())

	if !cfg.Enabled {
		return commands.CommandResult{
			Success: false,
			Error:   fmt.Errorf("kill module is disabled in config"),
		}
	}

	notifCfg := ctx.Config().GetNotificationConfig()
	manager := newManager(cfg.ListerOptions(), ctx.Logger())

	// Check for direct command (kill by PID or process name)
	if args := ctx.Args(); len(args) > 0 {
		return executeDirectKill(manager, args, &notifCfg)
	}

	for {
		processes, err := manager.List(context.Background())
		if err != nil {
			utils.ShowErrorNotificationWithConfig(&notifCfg, "Kill Error", err.Error())
			return commands.CommandResult{Success: false, Error: err}
		}

		if len(processes) == 0 {
			return commands.CommandResult{Success: false, Error: fmt.Errorf("no processes found")}
		}

		selected, result := chooseProcess(ctx, processes)
		if result != nil {
			return *result
		}

		target, byName, result := chooseAction(ctx, selected)
		if result != nil {
			if result.IsBack() {
				continue
			}
			return *result
		}

		if cfg.ConfirmKill {
			if result := confirm(ctx, target); result != nil {
				if result.IsBack() {
					continue
				}
				return *result
			}
		}

		if byName {
			err = manager.TerminateByName(context.Background(), selected.Name)
		} else {
			err = manager.Terminate(context.Background(), selected.PID)
		}
		if err != nil {
			utils.ShowErrorNotificationWithConfig(&notifCfg, "Kill Error", err.Error())
			return commands.CommandResult{Success: false, Error: err}
		}

		utils.NotifyWithConfig(&notifCfg, "Process Killed", "Killed "+target)
		return commands.CommandResult{Success: true}
	}
}

// FormatProcess renders one menu line.
func FormatProcess(p process.ProcessRecord) string {
	return fmt.Sprintf("PID: %-7s | MEM: %-10s | %-10s | %s", p.PID, p.MemoryUsageRaw, p.SessionName, p.Name)
}

func chooseProcess(ctx commands.LauncherContext, processes []process.ProcessRecord) (process.ProcessRecord, *commands.CommandResult) {
	var options []string
	if !ctx.IsDirectLaunch() {
		options = append(options, commands.BackOption)
	}

	byLabel := make(map[string]process.ProcessRecord, len(processes))
	for _, p := range processes {
		label := FormatProcess(p)
		options = append(options, label)
		byLabel[label] = p
	}

	selected, err := ctx.Show(options, "Kill Process")
	if err != nil {
		// ESC pressed - exit completely
		return process.ProcessRecord{}, &commands.CommandResult{Success: false}
	}

	p, ok := byLabel[selected]
	if !ok {
		return process.ProcessRecord{}, &commands.CommandResult{Success: false, Error: commands.ErrBack}
	}
	return p, nil
}

func chooseAction(ctx commands.LauncherContext, p process.ProcessRecord) (string, bool, *commands.CommandResult) {
	killAll := fmt.Sprintf(actionKillAll, p.Name)
	options := []string{commands.BackOption, actionKill, killAll}

	choice, err := ctx.Show(options, fmt.Sprintf("%s (PID: %s)", p.Name, p.PID))
	if err != nil {
		return "", false, &commands.CommandResult{Success: false}
	}

	switch choice {
	case actionKill:
		return fmt.Sprintf("%s (PID: %s)", p.Name, p.PID), false, nil
	case killAll:
		return "all " + p.Name + " processes", true, nil
	default:
		return "", false, &commands.CommandResult{Success: false, Error: commands.ErrBack}
	}
}

func confirm(ctx commands.LauncherContext, target string) *commands.CommandResult {
	choice, err := ctx.Show([]string{commands.BackOption, confirmYes, confirmNo}, fmt.Sprintf("Kill %s?", target))
	if err != nil {
		// cancelled: nothing has been run yet
		return &commands.CommandResult{Success: false}
	}
	if choice != confirmYes {
		return &commands.CommandResult{Success: false, Error: commands.ErrBack}
	}
	return nil
}

func executeDirectKill(manager Manager, targets []string, notifCfg *config.NotificationConfig) commands.CommandResult {
	var killed []string
	var failures []string

	for _, target := range targets {
		var err error
		label := target
		if process.IsPID(target) {
			err = manager.Terminate(context.Background(), target)
			label = "PID " + target
		} else {
			err = manager.TerminateByName(context.Background(), target)
		}

		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		killed = append(killed, label)
	}

	if len(killed) > 0 {
		utils.NotifyWithConfig(notifCfg, "Processes Killed", strings.Join(killed, "\n"))
	}

	if len(failures) > 0 {
		err := fmt.Errorf("killed %d of %d targets: %s", len(killed), len(targets), strings.Join(failures, "; "))
		utils.ShowErrorNotificationWithConfig(notifCfg, "Kill Error", err.Error())
		return commands.CommandResult{Success: false, Error: err}
	}

	return commands.CommandResult{Success: true}
}

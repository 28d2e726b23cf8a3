package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvim-tech/qlfind/pkg/commands/kill"
	"github.com/lvim-tech/qlfind/pkg/process"
)

func newKillCommand(a *app) *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "kill [pid|name]...",
		Short: "Terminate processes",
		Long: `Force-terminate processes by pid or by exact name.

Arguments that are numbers are treated as pids unless --name is given.
Without arguments the interactive process menu opens in the launcher.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				ctx, err := a.context(a.launcherName, nil, true)
				if err != nil {
					return err
				}
				return runDirect(ctx, "kill")
			}

			cfg := kill.LoadConfig(a.cfg.GetKillConfig())
			lister := process.NewLister(cfg.ListerOptions(), a.log)
			return terminateTargets(cmd, lister, args, byName)
		},
	}

	cmd.Flags().BoolVar(&byName, "name", false, "treat every argument as a process name")

	return cmd
}

type terminator interface {
	TerminateAll(ctx context.Context, pids []string) process.BulkResult
	TerminateByName(ctx context.Context, name string) error
}

func terminateTargets(cmd *cobra.Command, t terminator, targets []string, byName bool) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	var pids, names []string
	for _, target := range targets {
		if !byName && process.IsPID(target) {
			pids = append(pids, target)
		} else {
			names = append(names, target)
		}
	}

	total, failed := len(targets), 0
	var firstErr error

	if len(pids) > 0 {
		result := t.TerminateAll(ctx, pids)
		for _, pid := range result.Succeeded {
			fmt.Fprintf(out, "terminated PID %s\n", pid)
		}
		failed += len(result.Failed)
		if result.Err != nil {
			firstErr = result.Err
		}
	}

	for _, name := range names {
		if err := t.TerminateByName(ctx, name); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(out, "terminated all %s processes\n", name)
	}

	if failed > 0 {
		return fmt.Errorf("terminated %d of %d targets: %w", total-failed, total, firstErr)
	}
	return nil
}

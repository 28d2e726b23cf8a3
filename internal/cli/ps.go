package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvim-tech/qlfind/pkg/commands/kill"
	"github.com/lvim-tech/qlfind/pkg/process"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

const clearScreen = "\033[H\033[2J"

func newPsCommand(a *app) *cobra.Command {
	var format string
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List running processes",
		Long: `List running processes using tasklist on Windows and ps elsewhere.

With --watch the list is refreshed on an interval until interrupted. A
refresh that is due while the previous listing is still running is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			cfg := kill.LoadConfig(a.cfg.GetKillConfig())
			lister := process.NewLister(cfg.ListerOptions(), a.log)
			out := cmd.OutOrStdout()

			if !watch {
				records, err := lister.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeProcesses(out, format, records)
			}

			if !cmd.Flags().Changed("interval") {
				interval = cfg.Interval()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchProcesses(ctx, lister, interval, out, format, utils.IsTerminal())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or yaml")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh the list until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", process.DefaultRefreshInterval, "refresh interval for --watch (default from config)")

	return cmd
}

func watchProcesses(ctx context.Context, lister process.ProcessLister, interval time.Duration, out io.Writer, format string, redraw bool) error {
	var mu sync.Mutex

	monitor := process.NewMonitor(lister, interval, func(s process.Snapshot) {
		mu.Lock()
		defer mu.Unlock()

		if redraw && format == formatTable {
			fmt.Fprint(out, clearScreen)
		}
		if s.Err != nil {
			fmt.Fprintf(out, "%s  error: %v\n", s.At.Format("15:04:05"), s.Err)
			return
		}
		if format == formatTable {
			fmt.Fprintf(out, "%s  %d processes\n", s.At.Format("15:04:05"), len(s.Records))
		}
		writeProcesses(out, format, s.Records)
	})

	err := monitor.Run(ctx)
	if skipped := monitor.Skipped(); skipped > 0 {
		fmt.Fprintf(out, "%d refreshes skipped while a listing was still running\n", skipped)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

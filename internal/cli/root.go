// Package cli wires qlfind's packages into cobra commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/lvim-tech/qlfind/pkg/commands/files"
	_ "github.com/lvim-tech/qlfind/pkg/commands/kill"
	"github.com/lvim-tech/qlfind/pkg/config"
	"github.com/lvim-tech/qlfind/pkg/launcher"
	"github.com/lvim-tech/qlfind/pkg/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// app carries state shared by all subcommands of one invocation.
type app struct {
	load func() (*config.Config, error)

	cfg *config.Config
	log *logger.Logger

	logLevel     string
	launcherName string
}

// NewRootCommand creates and returns the root cobra command for qlfind
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{load: config.Load})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qlfind [launcher]",
		Short: "Quick file search and process killer for dmenu-style launchers",
		Long: `qlfind searches your files and lists running processes through a
menu launcher (rofi, dmenu, fzf, bemenu, fuzzel or a built-in terminal menu).

Without a subcommand it opens the main menu. The optional argument selects
the launcher and overrides default_launcher from the config file.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     launcher.Names,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.launcherName
			if len(args) == 1 {
				name = args[0]
			}
			ctx, err := a.context(name, nil, false)
			if err != nil {
				return err
			}
			return runMenu(ctx)
		},
	}

	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	cmd.PersistentFlags().StringVarP(&a.launcherName, "launcher", "l", "", "launcher to use (default from config)")

	cmd.AddCommand(newFilesCommand(a))
	cmd.AddCommand(newSearchCommand(a))
	cmd.AddCommand(newPsCommand(a))
	cmd.AddCommand(newKillCommand(a))
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := a.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(stderr, logger.ParseLevel(level))

	return nil
}

// context builds the launcher context. An empty name uses the configured
// default launcher.
func (a *app) context(name string, args []string, direct bool) (*appContext, error) {
	if name == "" {
		name = a.cfg.GetDefaultLauncher()
	}

	l, err := launcher.New(name, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create launcher: %w", err)
	}

	a.log.Debugf("using launcher %s", l.Name())
	return &appContext{
		Launcher: l,
		cfg:      a.cfg,
		log:      a.log,
		args:     args,
		direct:   direct,
	}, nil
}

func newFilesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "files [query...]",
		Short: "Search files and open the selection",
		Long: `Search the configured roots and pick a result in the launcher.
With a query the prompt is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context(a.launcherName, args, true)
			if err != nil {
				return err
			}
			return runDirect(ctx, "files")
		},
	}
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config to the user config path",
		Args:  cobra.NoArgs,
		// init must work even when the existing config is broken
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitUserConfig(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config initialized at: %s\n", config.GetUserConfigPath())
			fmt.Fprintln(out, "\nYou can now edit the config file to customize qlfind.")
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Show version information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qlfind version %s\n", Version)
		},
	}
}

// Execute runs the root command and reports errors on stderr.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

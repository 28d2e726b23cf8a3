package cli

import (
	"github.com/lvim-tech/qlfind/pkg/config"
	"github.com/lvim-tech/qlfind/pkg/launcher"
	"github.com/lvim-tech/qlfind/pkg/logger"
)

// appContext implements commands.LauncherContext for one program run.
type appContext struct {
	launcher.Launcher
	cfg    *config.Config
	log    *logger.Logger
	args   []string
	direct bool
}

func (c *appContext) Config() *config.Config {
	return c.cfg
}

func (c *appContext) Logger() *logger.Logger {
	return c.log
}

func (c *appContext) Args() []string {
	return c.args
}

func (c *appContext) IsDirectLaunch() bool {
	return c.direct
}

package cli

import (
	"errors"
	"fmt"

	"github.com/lvim-tech/qlfind/pkg/commands"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

// runMenu shows the main menu until a command succeeds or the user leaves.
func runMenu(ctx *appContext) error {
	cfg := ctx.Config()

	registered := commands.GetAll()
	if len(registered) == 0 {
		return fmt.Errorf("no commands registered")
	}

	commandMap := make(map[string]commands.Command, len(registered))
	for _, cmd := range registered {
		commandMap[cmd.Name] = cmd
	}

	moduleOrder := cfg.GetModuleOrder()
	if len(moduleOrder) == 0 {
		for _, cmd := range registered {
			moduleOrder = append(moduleOrder, cmd.Name)
		}
	}

	notifCfg := cfg.GetNotificationConfig()

	for {
		var options []string
		optionToCommand := make(map[string]commands.Command)

		for _, name := range moduleOrder {
			cmd, exists := commandMap[name]
			if !exists || !cfg.IsCommandEnabled(cmd.Name) {
				continue
			}
			options = append(options, cmd.Description)
			optionToCommand[cmd.Description] = cmd
		}

		if len(options) == 0 {
			return fmt.Errorf("no enabled commands")
		}

		choice, err := ctx.Show(options, "qlfind")
		if err != nil {
			return nil
		}

		cmd, ok := optionToCommand[choice]
		if !ok {
			utils.ShowErrorNotificationWithConfig(&notifCfg, "Error", fmt.Sprintf("Unknown command: %s", choice))
			continue
		}

		result := cmd.Run(ctx)
		switch {
		case result.Success:
			return nil
		case errors.Is(result.Error, commands.ErrBack):
			continue
		case result.Error != nil:
			ctx.Logger().Errorf("%s: %v", cmd.Name, result.Error)
			utils.ShowErrorNotificationWithConfig(&notifCfg, "Error", result.Error.Error())
		default:
			// cancelled inside the command
			return nil
		}
	}
}

// runDirect runs one command without the main menu.
func runDirect(ctx *appContext, name string) error {
	cmd, ok := commands.Get(name)
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if !ctx.Config().IsCommandEnabled(name) {
		return fmt.Errorf("%s module is disabled in config", name)
	}

	result := cmd.Run(ctx)
	if result.Success || result.Error == nil || errors.Is(result.Error, commands.ErrBack) {
		return nil
	}
	return result.Error
}

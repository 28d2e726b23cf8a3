// Package files provides file search for qlfind.
// It asks for a query, searches the configured roots and opens the chosen
// entry with the configured opener.
package files

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lvim-tech/qlfind/pkg/commands"
	"github.com/lvim-tech/qlfind/pkg/search"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

func init() {
	commands.Register(commands.Command{
		Name:        "files",
		Description: "Find files",
		Run:         Run,
	})
}

// searchTimeout bounds the accelerated part of one interactive search.
const searchTimeout = 30 * time.Second

// openFile launches opener on path without waiting for it.
var openFile = func(opener, path string) error {
	return utils.RunCommandBackground(opener, path)
}

func Run(ctx commands.LauncherContext) commands.CommandResult {
	cfg := LoadConfig(ctx.Config().GetFilesConfig())

	if !cfg.Enabled {
		return commands.CommandResult{
			Success: false,
			Error:   fmt.Errorf("files module is disabled in config"),
		}
	}

	notifCfg := ctx.Config().GetNotificationConfig()
	searcher := search.NewSearcher(cfg.Accelerator(), ctx.Logger())

	direct := strings.TrimSpace(strings.Join(ctx.Args(), " "))

	for {
		query := direct
		if query == "" {
			var result *commands.CommandResult
			query, result = promptQuery(ctx)
			if result != nil {
				return *result
			}
		}

		searchCtx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		res, err := searcher.Search(searchCtx, cfg.SearchOptions(query))
		cancel()
		if err != nil {
			utils.ShowErrorNotificationWithConfig(&notifCfg, "Files Error", err.Error())
			return commands.CommandResult{Success: false, Error: err}
		}

		if len(res.Records) == 0 {
			return commands.CommandResult{
				Success: false,
				Error:   fmt.Errorf("no files matching %q", query),
			}
		}

		record, result := chooseRecord(ctx, res, query)
		if result != nil {
			if result.IsBack() && direct == "" && !ctx.IsDirectLaunch() {
				continue
			}
			return *result
		}

		if err := openFile(cfg.Opener, record.Path); err != nil {
			utils.ShowErrorNotificationWithConfig(&notifCfg, "Files Error",
				fmt.Sprintf("Failed to open %s: %v", record.Path, err))
			return commands.CommandResult{Success: false}
		}

		ctx.Logger().Infof("opened %s with %s", record.Path, cfg.Opener)
		return commands.CommandResult{Success: true}
	}
}

func promptQuery(ctx commands.LauncherContext) (string, *commands.CommandResult) {
	var options []string
	if !ctx.IsDirectLaunch() {
		options = append(options, commands.BackOption)
	}

	query, err := ctx.Show(options, "Search files")
	if err != nil {
		// ESC pressed - exit completely
		return "", &commands.CommandResult{Success: false}
	}

	query = strings.TrimSpace(query)
	if query == "" || query == commands.BackOption {
		return "", &commands.CommandResult{Success: false, Error: commands.ErrBack}
	}

	return query, nil
}

func chooseRecord(ctx commands.LauncherContext, res *search.Result, query string) (search.FileRecord, *commands.CommandResult) {
	options := []string{commands.BackOption}
	byLabel := make(map[string]search.FileRecord, len(res.Records))

	for _, record := range res.Records {
		label := FormatRecord(record)
		if _, dup := byLabel[label]; dup {
			continue
		}
		options = append(options, label)
		byLabel[label] = record
	}

	prompt := fmt.Sprintf("%s (%d in %dms)", query, res.TotalCount, res.ElapsedMillis)
	selected, err := ctx.Show(options, prompt)
	if err != nil {
		return search.FileRecord{}, &commands.CommandResult{Success: false}
	}

	record, ok := byLabel[selected]
	if !ok {
		return search.FileRecord{}, &commands.CommandResult{Success: false, Error: commands.ErrBack}
	}

	return record, nil
}

// FormatRecord renders one menu line: name, size, modified time and path.
func FormatRecord(r search.FileRecord) string {
	size := FormatSize(r.SizeBytes)
	if r.Kind == search.KindDirectory {
		size = "dir"
	}

	modified := "-"
	if !r.ModifiedAt.IsZero() {
		modified = r.ModifiedAt.Local().Format("2006-01-02 15:04")
	}

	return fmt.Sprintf("%-30s %8s  %s  %s", r.Name, size, modified, r.Path)
}

// FormatSize renders a byte count with a binary unit suffix.
func FormatSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvim-tech/qlfind/pkg/commands/files"
	"github.com/lvim-tech/qlfind/pkg/logger"
	"github.com/lvim-tech/qlfind/pkg/search"
)

type searchFlags struct {
	format     string
	live       bool
	roots      []string
	maxResults int
	hidden     bool
	exclude    []string
	debounce   time.Duration
}

func newSearchCommand(a *app) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search files and print the results",
		Long: `Search the configured roots for entries whose name contains the query
(case-insensitive) and print them.

With --live every line read from stdin is a new query; results are printed
for the latest query once input has been quiet for the debounce period.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(flags.format); err != nil {
				return err
			}

			cfg := files.LoadConfig(a.cfg.GetFilesConfig())
			searcher := search.NewSearcher(cfg.Accelerator(), a.log)
			options := func(query string) search.Options {
				return flags.apply(cmd, cfg.SearchOptions(query))
			}

			if flags.live {
				return runLiveSearch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), searcher, options, flags.debounce, flags.format, a.log)
			}

			if len(args) == 0 {
				return fmt.Errorf("search requires a query")
			}

			res, err := searcher.Search(cmd.Context(), options(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			return writeSearchResult(cmd.OutOrStdout(), flags.format, res)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", formatTable, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&flags.live, "live", false, "read queries from stdin and print the latest result")
	cmd.Flags().StringSliceVarP(&flags.roots, "root", "r", nil, "search root (repeatable; default from config)")
	cmd.Flags().IntVarP(&flags.maxResults, "max-results", "n", 0, "maximum number of results (default from config)")
	cmd.Flags().BoolVar(&flags.hidden, "hidden", false, "include hidden entries")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "name substrings to skip (replaces the config list)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", search.DefaultDebounce, "quiet period before a live search starts")

	return cmd
}

// apply overrides config-derived options with flags the user actually set.
func (f *searchFlags) apply(cmd *cobra.Command, opts search.Options) search.Options {
	if cmd.Flags().Changed("root") {
		opts.Roots = f.roots
	}
	if cmd.Flags().Changed("max-results") {
		opts.MaxResults = f.maxResults
	}
	if cmd.Flags().Changed("hidden") {
		opts.IncludeHidden = f.hidden
	}
	if cmd.Flags().Changed("exclude") {
		opts.ExcludePatterns = f.exclude
	}
	return opts
}

// runLiveSearch treats every input line as the new query. Only the newest
// search may publish its result; older ones still running are discarded.
func runLiveSearch(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	searcher *search.Searcher,
	options func(string) search.Options,
	debounce time.Duration,
	format string,
	log *logger.Logger,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var slot search.Slot
	var outMu sync.Mutex
	debouncer := search.NewDebouncer(debounce)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())

		debouncer.Trigger(func() {
			token := slot.Begin()
			res, err := searcher.Search(ctx, options(query))
			if err != nil {
				log.Errorf("search %q: %v", query, err)
				return
			}
			if !slot.Commit(token, res) {
				log.Debugf("discarding superseded result for %q", query)
				return
			}

			outMu.Lock()
			defer outMu.Unlock()
			if format == formatTable {
				fmt.Fprintf(out, "> %s\n", query)
			}
			if err := writeSearchResult(out, format, res); err != nil {
				log.Errorf("write result: %v", err)
			}
		})
	}

	debouncer.Flush()
	return scanner.Err()
}

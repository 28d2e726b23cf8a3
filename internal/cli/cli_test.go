package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lvim-tech/qlfind/pkg/commands"
	"github.com/lvim-tech/qlfind/pkg/config"
	"github.com/lvim-tech/qlfind/pkg/launcher"
	"github.com/lvim-tech/qlfind/pkg/logger"
	"github.com/lvim-tech/qlfind/pkg/process"
	"github.com/lvim-tech/qlfind/pkg/search"
)

func testConfig(root string) *config.Config {
	return &config.Config{
		DefaultLauncher: "tui",
		Commands: map[string]map[string]interface{}{
			"files": {"search_roots": root, "exclude_patterns": "node_modules"},
		},
	}
}

func execute(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&app{load: func() (*config.Config, error) { return cfg, nil }})

	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func makeFiles(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{"Report.pdf", "docs/report-2024.txt", "node_modules/report.js", ".secret-report"} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return root
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"files", "search", "ps", "kill", "init", "version"})
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "qlfind version dev\n", out)
}

func TestConfigLoadError(t *testing.T) {
	cmd := newRootCommand(&app{load: func() (*config.Config, error) { return nil, errors.New("bad toml") }})
	cmd.SetArgs([]string{"search", "x"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSearchJSON(t *testing.T) {
	root := makeFiles(t)

	out, err := execute(t, testConfig(root), "", "search", "REPORT", "--format", "json")
	require.NoError(t, err)

	var res search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, uint(2), res.TotalCount)
	assert.False(t, res.Accelerated)

	var names []string
	for _, r := range res.Records {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Report.pdf", "report-2024.txt"}, names)
}

func TestSearchFlagsOverrideConfig(t *testing.T) {
	root := makeFiles(t)

	out, err := execute(t, testConfig(root), "", "search", "report", "--format", "yaml", "--hidden", "--exclude", "docs", "-n", "10")
	require.NoError(t, err)

	var res struct {
		Records []struct {
			Name string `yaml:"name"`
		} `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))

	var names []string
	for _, r := range res.Records {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Report.pdf", "report.js", ".secret-report"}, names)
}

func TestSearchTable(t *testing.T) {
	root := makeFiles(t)

	out, err := execute(t, testConfig(root), "", "search", "pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, filepath.Join(root, "Report.pdf"))
	assert.Contains(t, out, "1 results in")
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := execute(t, testConfig(t.TempDir()), "", "search")
	assert.EqualError(t, err, "search requires a query")

	_, err = execute(t, testConfig(t.TempDir()), "", "search", "x", "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestSearchLivePrintsLatestQuery(t *testing.T) {
	root := makeFiles(t)

	out, err := execute(t, testConfig(root), "rep\nrepo\npdf\n", "search", "--live", "--debounce", "50ms")
	require.NoError(t, err)

	assert.Contains(t, out, "> pdf")
	assert.NotContains(t, out, "> rep\n")
	assert.Equal(t, 1, strings.Count(out, "results in"))
}

func TestRunLiveSearchEmptyInput(t *testing.T) {
	var out bytes.Buffer
	searcher := search.NewSearcher(nil, logger.Discard())
	options := func(q string) search.Options { return search.Options{Roots: []string{t.TempDir()}, Query: q} }

	err := runLiveSearch(context.Background(), strings.NewReader(""), &out, searcher, options, time.Millisecond, formatJSON, logger.Discard())
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

type fakeTerminator struct {
	pids  []string
	names []string
	fail  map[string]error
}

func (f *fakeTerminator) TerminateAll(_ context.Context, pids []string) process.BulkResult {
	f.pids = append(f.pids, pids...)
	return process.BulkResult{Succeeded: pids}
}

func (f *fakeTerminator) TerminateByName(_ context.Context, name string) error {
	f.names = append(f.names, name)
	return f.fail[name]
}

func TestTerminateTargets(t *testing.T) {
	f := &fakeTerminator{fail: map[string]error{"ghost": process.ErrNotFound}}
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	err := terminateTargets(cmd, f, []string{"42", "firefox", "ghost"}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, process.ErrNotFound)
	assert.Contains(t, err.Error(), "terminated 2 of 3 targets")
	assert.Equal(t, []string{"42"}, f.pids)
	assert.Equal(t, []string{"firefox", "ghost"}, f.names)
	assert.Contains(t, out.String(), "terminated PID 42")

	f = &fakeTerminator{}
	require.NoError(t, terminateTargets(cmd, f, []string{"1234"}, true))
	assert.Empty(t, f.pids)
	assert.Equal(t, []string{"1234"}, f.names)
}

type staticLister struct {
	calls atomic.Int32
}

func (s *staticLister) List(context.Context) ([]process.ProcessRecord, error) {
	s.calls.Add(1)
	return []process.ProcessRecord{{Name: "init", PID: "1", MemoryUsageRaw: "100 K"}}, nil
}

func TestWatchProcessesStopsOnCancel(t *testing.T) {
	lister := &staticLister{}
	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer

	done := make(chan error, 1)
	go func() { done <- watchProcesses(ctx, lister, 10*time.Millisecond, &out, formatTable, false) }()

	require.Eventually(t, func() bool { return lister.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "1 processes")
	assert.NotContains(t, out.String(), clearScreen)
}

func TestWriteProcessesEmptyJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeProcesses(&out, formatJSON, nil))
	assert.Equal(t, "[]\n", out.String())
}

type scriptedLauncher struct {
	replies []string
	shown   [][]string
}

func (s *scriptedLauncher) Name() string { return "scripted" }

func (s *scriptedLauncher) Show(options []string, _ string) (string, error) {
	s.shown = append(s.shown, options)
	if len(s.replies) == 0 {
		return "", launcher.ErrCancelled
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func TestRunMenuOrderAndBack(t *testing.T) {
	var runs int
	commands.Register(commands.Command{
		Name:        "menu-test",
		Description: "Menu test",
		Run: func(commands.LauncherContext) commands.CommandResult {
			runs++
			if runs == 1 {
				return commands.CommandResult{Error: commands.ErrBack}
			}
			return commands.CommandResult{Success: true}
		},
	})

	cfg := &config.Config{
		ModuleOrder: []string{"menu-test", "files", "kill"},
		Commands:    map[string]map[string]interface{}{"kill": {"enabled": false}},
	}
	l := &scriptedLauncher{replies: []string{"Menu test", "Menu test"}}
	ctx := &appContext{Launcher: l, cfg: cfg, log: logger.Discard()}

	require.NoError(t, runMenu(ctx))
	assert.Equal(t, 2, runs)
	require.Len(t, l.shown, 2)
	assert.Equal(t, []string{"Menu test", "Find files"}, l.shown[0])
}

func TestRunMenuEscExits(t *testing.T) {
	cfg := &config.Config{ModuleOrder: []string{"files"}}
	l := &scriptedLauncher{}
	ctx := &appContext{Launcher: l, cfg: cfg, log: logger.Discard()}

	require.NoError(t, runMenu(ctx))
	assert.Len(t, l.shown, 1)
}

func TestRunDirectUnknown(t *testing.T) {
	ctx := &appContext{Launcher: &scriptedLauncher{}, cfg: &config.Config{}, log: logger.Discard()}
	assert.EqualError(t, runDirect(ctx, "nope"), "unknown command: nope")
}

package launcher

import (
	"errors"
	"io"
	"os/exec"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvim-tech/qlfind/pkg/config"
)

func exitError(t *testing.T, code string) error {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	err := exec.Command("sh", "-c", "exit "+code).Run()
	require.Error(t, err)
	return err
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}
	cfg.Launchers.Rofi = config.LauncherCommand{Args: []string{"-i"}}
	cfg.Launchers.Fzf = config.LauncherCommand{Command: "/opt/fzf/bin/fzf"}

	l, err := New("rofi", cfg)
	require.NoError(t, err)
	assert.Equal(t, "rofi", l.Name())
	ext := l.(*External)
	assert.Equal(t, "rofi", ext.command)
	assert.Equal(t, []string{"-i", "-dmenu", "-p", "Files"}, ext.buildArgs("Files"))

	l, err = New("fzf", cfg)
	require.NoError(t, err)
	assert.Equal(t, "/opt/fzf/bin/fzf", l.(*External).command)
	assert.Equal(t, []string{"--prompt", "Kill> "}, l.(*External).buildArgs("Kill"))

	l, err = New("tui", cfg)
	require.NoError(t, err)
	assert.Equal(t, "tui", l.Name())

	_, err = New("wofi", cfg)
	assert.ErrorIs(t, err, ErrNoLauncher)
}

func TestExternalShow(t *testing.T) {
	var gotArgs []string
	var gotInput string

	e := newExternal("dmenu", "dmenu", []string{"-l", "20"}, presets["dmenu"])
	e.exec = func(name string, args []string, stdin io.Reader, _ io.Writer) ([]byte, error) {
		gotArgs = args
		data, _ := io.ReadAll(stdin)
		gotInput = string(data)
		return []byte("  beta  \nignored\n"), nil
	}

	choice, err := e.Show([]string{"alpha", "beta"}, "Pick")
	require.NoError(t, err)
	assert.Equal(t, "beta", choice)
	assert.Equal(t, []string{"-l", "20", "-p", "Pick"}, gotArgs)
	assert.Equal(t, "alpha\nbeta", gotInput)
}

func TestExternalSelection(t *testing.T) {
	e := newExternal("rofi", "rofi", nil, presets["rofi"])

	_, err := e.selection(nil, exitError(t, "1"))
	assert.True(t, IsCancelled(err))

	_, err = e.selection(nil, exitError(t, "130"))
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = e.selection(nil, exitError(t, "2"))
	require.Error(t, err)
	assert.False(t, IsCancelled(err))
	assert.Contains(t, err.Error(), "rofi exited with error")

	_, err = e.selection(nil, errors.New("executable file not found"))
	assert.Contains(t, err.Error(), "failed to start rofi")

	_, err = e.selection([]byte("\n"), nil)
	assert.ErrorIs(t, err, ErrCancelled)
}

func typeKeys(m menuModel, s string) menuModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(menuModel)
	}
	return m
}

func press(m menuModel, k tea.KeyType) (menuModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(menuModel), cmd
}

func TestMenuModelFilters(t *testing.T) {
	m := newMenuModel([]string{"report.PDF", "notes.txt", "Reports"}, "Files")
	assert.Len(t, m.filtered, 3)

	m = typeKeys(m, "rep")
	assert.Equal(t, []int{0, 2}, m.filtered)

	m, _ = press(m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor)
	m, _ = press(m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor)

	m, cmd := press(m, tea.KeyEnter)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Reports", m.choice)
}

func TestMenuModelFreeText(t *testing.T) {
	m := newMenuModel(nil, "Search")
	m = typeKeys(m, "invoice")
	m, _ = press(m, tea.KeyBackspace)

	m, _ = press(m, tea.KeyEnter)
	assert.Equal(t, "invoic", m.choice)
	assert.False(t, m.cancelled)
}

func TestMenuModelCancel(t *testing.T) {
	m := newMenuModel([]string{"a"}, "x")
	m, cmd := press(m, tea.KeyEsc)
	assert.True(t, m.cancelled)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "x>")
}

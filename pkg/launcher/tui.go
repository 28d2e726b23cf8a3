package launcher

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "57", Dark: "99"})
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "30", Dark: "86"})
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "247", Dark: "241"})
)

const tuiPageSize = 15

type tuiKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
	Erase  key.Binding
	Clear  key.Binding
}

func newTUIKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j", "tab"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
		Erase: key.NewBinding(
			key.WithKeys("backspace"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
		),
	}
}

// TUI is a built-in terminal menu for use without a graphical launcher.
type TUI struct {
	in  io.Reader
	out io.Writer
}

// NewTUI creates a terminal menu reading keys from in and drawing on out.
func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out}
}

func (t *TUI) Name() string {
	return "tui"
}

func (t *TUI) Show(options []string, prompt string) (string, error) {
	p := tea.NewProgram(newMenuModel(options, prompt), tea.WithInput(t.in), tea.WithOutput(t.out))

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("terminal menu failed: %w", err)
	}

	m := final.(menuModel)
	if m.cancelled || m.choice == "" {
		return "", ErrCancelled
	}
	return m.choice, nil
}

// menuModel filters options by a case-insensitive substring of the typed
// query. Enter with no match returns the query itself.
type menuModel struct {
	keys     tuiKeyMap
	prompt   string
	options  []string
	filtered []int
	query    []rune
	cursor   int

	choice    string
	cancelled bool
}

func newMenuModel(options []string, prompt string) menuModel {
	m := menuModel{
		keys:    newTUIKeyMap(),
		prompt:  prompt,
		options: options,
	}
	m.refilter()
	return m
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Select):
		if len(m.filtered) > 0 {
			m.choice = m.options[m.filtered[m.cursor]]
		} else {
			m.choice = strings.TrimSpace(string(m.query))
		}
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Erase):
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
			m.refilter()
		}
	case key.Matches(keyMsg, m.keys.Clear):
		m.query = nil
		m.refilter()
	case keyMsg.Type == tea.KeyRunes, keyMsg.Type == tea.KeySpace:
		m.query = append(m.query, keyMsg.Runes...)
		if keyMsg.Type == tea.KeySpace && len(keyMsg.Runes) == 0 {
			m.query = append(m.query, ' ')
		}
		m.refilter()
	}

	return m, nil
}

func (m *menuModel) refilter() {
	needle := strings.ToLower(string(m.query))

	filtered := make([]int, 0, len(m.options))
	for i, option := range m.options {
		if needle == "" || strings.Contains(strings.ToLower(option), needle) {
			filtered = append(filtered, i)
		}
	}
	m.filtered = filtered
	m.cursor = 0
}

func (m menuModel) View() string {
	var b strings.Builder

	b.WriteString(promptStyle.Render(m.prompt+">") + " " + string(m.query) + "\n")

	start := 0
	if m.cursor >= tuiPageSize {
		start = m.cursor - tuiPageSize + 1
	}
	end := start + tuiPageSize
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	for i := start; i < end; i++ {
		option := m.options[m.filtered[i]]
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+option) + "\n")
		} else {
			b.WriteString("  " + option + "\n")
		}
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d  enter select · esc cancel", len(m.filtered), len(m.options))))
	return b.String()
}

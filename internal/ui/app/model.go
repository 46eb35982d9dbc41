// Package app holds the bubbletea model behind the tui interpreter: an
// output viewport fed by the interpreter's sink and event hooks, a command
// input line, and a status bar tracking inferior state.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dbgsh/internal/ui/theme"
)

// ExecFunc runs one command line through the owning interpreter.
type ExecFunc func(ctx context.Context, line string) error

// OutputMsg appends one rendered line to the output pane.
type OutputMsg struct {
	Line  string
	Style lipgloss.Style
}

// StatusMsg replaces the status-bar text.
type StatusMsg struct {
	Text string
}

// ExecDoneMsg is sent when a submitted command finishes.
type ExecDoneMsg struct {
	Err error
}

type keyMap struct {
	Submit key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Quit}}
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run command")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

type Model struct {
	exec ExecFunc

	viewport viewport.Model
	input    textinput.Model
	help     help.Model

	lines  []string
	status string
	busy   bool
	ready  bool
	width  int
	height int
}

func NewModel(exec ExecFunc, backlog []string) Model {
	input := textinput.New()
	input.Prompt = theme.Prompt.Render("(dbgsh) ")
	input.Placeholder = "help"
	input.Focus()
	return Model{
		exec:   exec,
		input:  input,
		help:   help.New(),
		lines:  append([]string(nil), backlog...),
		status: "no inferior",
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.appendLine(theme.Prompt.Render("(dbgsh) ") + line)
			exec := m.exec
			return m, func() tea.Msg {
				return ExecDoneMsg{Err: exec(context.Background(), line)}
			}
		}

	case OutputMsg:
		m.appendLine(msg.Style.Render(msg.Line))
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		return m, nil

	case ExecDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.appendLine(theme.Errored.Render(msg.Err.Error()))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "starting dbgsh tui..."
	}
	status := theme.StatusBar.Width(m.width).Render(
		fmt.Sprintf("%s  %s", theme.Stopped.Render("dbgsh"), m.status))
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.Output.Render(m.viewport.View()),
		m.input.View(),
		status,
		m.help.View(keys),
	))
}

// Package tui implements the full-screen front-end on bubbletea. Until the
// program is on screen, output accumulates in a backlog that seeds the
// viewport when PreCommandLoop starts the event loop.
package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dbgsh/internal/modules/interp/domain"
	"dbgsh/internal/ui/app"
	"dbgsh/internal/ui/theme"
)

type Interp struct {
	domain.Base
	runner domain.Runner
	sink   *tuiSink

	mu      sync.Mutex
	program *tea.Program
	backlog []string
	logfile io.WriteCloser
}

func New(name string, runner domain.Runner) *Interp {
	t := &Interp{
		Base:   domain.NewBase(name),
		runner: runner,
	}
	t.sink = &tuiSink{interp: t}
	return t
}

func (t *Interp) Resume()  {}
func (t *Interp) Suspend() {}

func (t *Interp) Exec(ctx context.Context, command string) error {
	return t.runner.Run(ctx, t, command)
}

func (t *Interp) Sink() domain.Sink { return t.sink }

func (t *Interp) SetLogging(cfg domain.LogConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cfg.File == nil {
		if t.logfile != nil {
			if err := t.logfile.Close(); err != nil {
				return fmt.Errorf("close logfile: %w", err)
			}
		}
		t.logfile = nil
		return nil
	}
	t.logfile = cfg.File
	return nil
}

// PreCommandLoop runs the full-screen program; it blocks until the user
// quits, which ends the TUI session.
func (t *Interp) PreCommandLoop() {
	t.mu.Lock()
	model := app.NewModel(func(ctx context.Context, line string) error {
		return t.runner.Run(ctx, t, line)
	}, t.backlog)
	program := tea.NewProgram(model, tea.WithAltScreen())
	t.program = program
	t.mu.Unlock()

	_, _ = program.Run()

	t.mu.Lock()
	t.program = nil
	t.mu.Unlock()
}

func (t *Interp) SupportsCommandEditing() bool { return true }

func (t *Interp) push(line string, style lipgloss.Style) {
	t.mu.Lock()
	program := t.program
	logfile := t.logfile
	if program == nil {
		t.backlog = append(t.backlog, style.Render(line))
	}
	t.mu.Unlock()
	if logfile != nil {
		_, _ = fmt.Fprintln(logfile, line)
	}
	if program != nil {
		program.Send(app.OutputMsg{Line: line, Style: style})
	}
}

func (t *Interp) setStatus(text string) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()
	if program != nil {
		program.Send(app.StatusMsg{Text: text})
	}
}

func (t *Interp) OnSignalReceived(sig domain.Signal) {
	t.push(fmt.Sprintf("signal %s received", sig.Name), theme.Errored)
	t.setStatus(fmt.Sprintf("stopped: signal %s", sig.Name))
}

func (t *Interp) OnSignalExited(sig domain.Signal) {
	t.push(fmt.Sprintf("program terminated with signal %s", sig.Name), theme.Errored)
	t.setStatus("no inferior")
}

func (t *Interp) OnNormalStop(stop domain.StopInfo) {
	if stop.PrintFrame {
		if stop.Breakpoint > 0 {
			t.push(fmt.Sprintf("breakpoint %d hit in %s ()", stop.Breakpoint, stop.Frame), theme.Stopped)
		} else {
			t.push(fmt.Sprintf("stopped in %s ()", stop.Frame), theme.Stopped)
		}
	}
	t.setStatus(fmt.Sprintf("stopped in %s", stop.Frame))
}

func (t *Interp) OnExited(status int) {
	t.push(fmt.Sprintf("inferior exited with code %d", status), theme.Running)
	t.setStatus("no inferior")
}

func (t *Interp) OnNoHistory() {
	t.push("no more reverse-execution history", theme.Errored)
}

func (t *Interp) OnNewThread(th domain.Thread) {
	t.push(fmt.Sprintf("new thread %d (%s)", th.GlobalID, th.Name), theme.Running)
}

func (t *Interp) OnThreadExited(th domain.Thread, silent bool) {
	if silent {
		return
	}
	t.push(fmt.Sprintf("thread %d exited", th.GlobalID), theme.Running)
}

func (t *Interp) OnInferiorAppeared(inf domain.Inferior) {
	t.push(fmt.Sprintf("starting %s (pid %d)", inf.Executable, inf.PID), theme.Running)
	t.setStatus(fmt.Sprintf("running %s", inf.Executable))
}

type tuiSink struct {
	interp *Interp
}

func (s *tuiSink) Print(text string) {
	s.interp.push(text, lipgloss.NewStyle())
}

func (s *tuiSink) Error(text string) {
	s.interp.push(text, theme.Errored)
}

func (s *tuiSink) Result(key, value string) {
	s.interp.push(fmt.Sprintf("%s = %s", key, value), lipgloss.NewStyle())
}

// Package console implements the plain line-oriented front-end. It is the
// default top-level interpreter: commands come in as typed lines, results and
// execution events render as human-readable text.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"dbgsh/internal/modules/interp/domain"
)

const prompt = "(dbgsh) "

type Interp struct {
	domain.Base
	runner domain.Runner

	mu     sync.Mutex
	active bool
	banner sync.Once
	sink   *consoleSink
}

func New(name string, out io.Writer, runner domain.Runner) *Interp {
	return &Interp{
		Base:   domain.NewBase(name),
		runner: runner,
		sink:   newConsoleSink(out),
	}
}

func (c *Interp) Resume() {
	c.mu.Lock()
	c.active = true
	c.mu.Unlock()
}

func (c *Interp) Suspend() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

func (c *Interp) Exec(ctx context.Context, command string) error {
	return c.runner.Run(ctx, c, command)
}

func (c *Interp) Sink() domain.Sink { return c.sink }

func (c *Interp) SetLogging(cfg domain.LogConfig) error {
	return c.sink.setLogging(cfg)
}

func (c *Interp) PreCommandLoop() {
	c.banner.Do(func() {
		c.sink.Print("dbgsh interactive debugger shell. Type \"help\" for commands.")
	})
	c.sink.prompt()
}

func (c *Interp) SupportsCommandEditing() bool { return true }

// isActive gates event rendering: a suspended console shares its terminal
// with whichever interpreter replaced it and must stay quiet.
func (c *Interp) isActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Interp) OnSignalReceived(sig domain.Signal) {
	if !c.isActive() {
		return
	}
	c.sink.Error(fmt.Sprintf("Program received signal %s", sig.Name))
}

func (c *Interp) OnSignalExited(sig domain.Signal) {
	if !c.isActive() {
		return
	}
	c.sink.Error(fmt.Sprintf("Program terminated with signal %s", sig.Name))
}

func (c *Interp) OnNormalStop(stop domain.StopInfo) {
	if !c.isActive() || !stop.PrintFrame {
		return
	}
	if stop.Reason == domain.StopBreakpointHit {
		c.sink.Print(fmt.Sprintf("Breakpoint %d, %s ()", stop.Breakpoint, stop.Frame))
		return
	}
	c.sink.Print(fmt.Sprintf("Stopped in %s ()", stop.Frame))
}

func (c *Interp) OnExited(status int) {
	if !c.isActive() {
		return
	}
	if status == 0 {
		c.sink.Print("[Inferior exited normally]")
		return
	}
	c.sink.Print(fmt.Sprintf("[Inferior exited with code %d]", status))
}

func (c *Interp) OnNoHistory() {
	if !c.isActive() {
		return
	}
	c.sink.Error("No more reverse-execution history.")
}

func (c *Interp) OnSyncExecutionDone() {
	if !c.isActive() {
		return
	}
	c.sink.prompt()
}

func (c *Interp) OnUserSelectedContextChanged(sel domain.UserSelection) {
	if !c.isActive() {
		return
	}
	if sel.Has(domain.SelectedThread) {
		c.sink.Print("[Switching threads]")
	}
	if sel.Has(domain.SelectedInferior) {
		c.sink.Print("[Switching inferiors]")
	}
}

func (c *Interp) OnNewThread(t domain.Thread) {
	if !c.isActive() {
		return
	}
	c.sink.Print(fmt.Sprintf("[New thread %d (%s)]", t.GlobalID, t.Name))
}

func (c *Interp) OnThreadExited(t domain.Thread, silent bool) {
	if !c.isActive() || silent {
		return
	}
	c.sink.Print(fmt.Sprintf("[Thread %d exited]", t.GlobalID))
}

func (c *Interp) OnInferiorAppeared(inf domain.Inferior) {
	if !c.isActive() {
		return
	}
	c.sink.Print(fmt.Sprintf("Starting program: %s (pid %d)", inf.Executable, inf.PID))
}

// consoleSink streams plain text, duplicating into the session logfile while
// logging is on.
type consoleSink struct {
	mu       sync.Mutex
	terminal io.Writer
	logfile  io.WriteCloser
	redirect bool

	errStyle    *color.Color
	promptStyle *color.Color
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{
		terminal:    out,
		errStyle:    color.New(color.FgRed),
		promptStyle: color.New(color.FgCyan, color.Bold),
	}
}

func (s *consoleSink) writer() io.Writer {
	if s.logfile != nil {
		if s.redirect {
			return s.logfile
		}
		return io.MultiWriter(s.terminal, s.logfile)
	}
	return s.terminal
}

func (s *consoleSink) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.writer(), text)
}

func (s *consoleSink) Error(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.errStyle.Fprintln(s.writer(), text)
}

func (s *consoleSink) Result(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.writer(), "%s = %s\n", key, value)
}

func (s *consoleSink) prompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.promptStyle.Fprint(s.writer(), prompt)
}

func (s *consoleSink) setLogging(cfg domain.LogConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.File == nil {
		if s.logfile != nil {
			if err := s.logfile.Close(); err != nil {
				return fmt.Errorf("close logfile: %w", err)
			}
		}
		s.logfile = nil
		s.redirect = false
		return nil
	}
	s.logfile = cfg.File
	s.redirect = cfg.Redirect
	return nil
}

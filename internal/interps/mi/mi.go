// Package mi implements the machine-interface front-end consumed by IDEs and
// other tooling. One implementation serves every protocol revision; "mi" is
// registered as an alias for the newest one. Execution events render as
// async records, command results as result records.
package mi

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"dbgsh/internal/modules/interp/domain"
)

// CurrentVersion is the revision the plain "mi" kind resolves to.
const CurrentVersion = 4

type Interp struct {
	domain.Base
	runner  domain.Runner
	version int
	sink    *recordSink
}

func New(name string, version int, out io.Writer, runner domain.Runner) *Interp {
	return &Interp{
		Base:    domain.NewBase(name),
		runner:  runner,
		version: version,
		sink:    &recordSink{out: out},
	}
}

func (m *Interp) Version() int { return m.version }

func (m *Interp) Init(topLevel bool) error {
	if topLevel {
		m.sink.record(fmt.Sprintf("=interpreter-started,name=%s,version=%s",
			quote(m.Name()), quote(strconv.Itoa(m.version))))
	}
	return nil
}

func (m *Interp) Resume()  {}
func (m *Interp) Suspend() {}

func (m *Interp) Exec(ctx context.Context, command string) error {
	if err := m.runner.Run(ctx, m, command); err != nil {
		m.sink.record(fmt.Sprintf("^error,msg=%s", quote(err.Error())))
		return err
	}
	m.sink.record("^done")
	return nil
}

func (m *Interp) Sink() domain.Sink { return m.sink }

func (m *Interp) SetLogging(cfg domain.LogConfig) error {
	return m.sink.setLogging(cfg)
}

func (m *Interp) PreCommandLoop() {
	m.sink.record("(dbgsh)")
}

// MI events render unconditionally: each MI consumer owns its channel, so a
// suspended MI interpreter still streams async records.

func (m *Interp) OnSignalReceived(sig domain.Signal) {
	m.sink.record(fmt.Sprintf("*stopped,reason=%s,signal-name=%s",
		quote("signal-received"), quote(sig.Name)))
}

func (m *Interp) OnSignalExited(sig domain.Signal) {
	m.sink.record(fmt.Sprintf("*stopped,reason=%s,signal-name=%s",
		quote("exited-signalled"), quote(sig.Name)))
}

func (m *Interp) OnNormalStop(stop domain.StopInfo) {
	if stop.Breakpoint > 0 {
		m.sink.record(fmt.Sprintf("*stopped,reason=%s,bkptno=%s,frame=%s",
			quote(string(stop.Reason)), quote(strconv.Itoa(stop.Breakpoint)), quote(stop.Frame)))
		return
	}
	m.sink.record(fmt.Sprintf("*stopped,reason=%s,frame=%s",
		quote(string(stop.Reason)), quote(stop.Frame)))
}

func (m *Interp) OnExited(status int) {
	if status == 0 {
		m.sink.record(fmt.Sprintf("*stopped,reason=%s", quote("exited-normally")))
		return
	}
	m.sink.record(fmt.Sprintf("*stopped,reason=%s,exit-code=%s",
		quote("exited"), quote(strconv.Itoa(status))))
}

func (m *Interp) OnNoHistory() {
	m.sink.record(fmt.Sprintf("*stopped,reason=%s", quote("no-history")))
}

func (m *Interp) OnSyncExecutionDone() {
	m.sink.record("(dbgsh)")
}

func (m *Interp) OnCommandError() {
	m.sink.record("(dbgsh)")
}

func (m *Interp) OnUserSelectedContextChanged(sel domain.UserSelection) {
	if sel.Has(domain.SelectedThread) {
		m.sink.record("=thread-selected")
	}
}

func (m *Interp) OnNewThread(t domain.Thread) {
	m.sink.record(fmt.Sprintf("=thread-created,id=%s,group-id=%s",
		quote(strconv.Itoa(t.GlobalID)), quote(groupID(t.InferiorNum))))
}

func (m *Interp) OnThreadExited(t domain.Thread, silent bool) {
	if silent {
		return
	}
	m.sink.record(fmt.Sprintf("=thread-exited,id=%s,group-id=%s",
		quote(strconv.Itoa(t.GlobalID)), quote(groupID(t.InferiorNum))))
}

func (m *Interp) OnInferiorAdded(inf domain.Inferior) {
	m.sink.record(fmt.Sprintf("=thread-group-added,id=%s", quote(groupID(inf.Num))))
}

func (m *Interp) OnInferiorAppeared(inf domain.Inferior) {
	m.sink.record(fmt.Sprintf("=thread-group-started,id=%s,pid=%s",
		quote(groupID(inf.Num)), quote(strconv.Itoa(inf.PID))))
}

func groupID(inferiorNum int) string {
	return "i" + strconv.Itoa(inferiorNum)
}

func quote(s string) string {
	return strconv.Quote(s)
}

// recordSink frames every emission as one MI record line.
type recordSink struct {
	mu       sync.Mutex
	out      io.Writer
	logfile  io.WriteCloser
	redirect bool
}

func (s *recordSink) writer() io.Writer {
	if s.logfile != nil {
		if s.redirect {
			return s.logfile
		}
		return io.MultiWriter(s.out, s.logfile)
	}
	return s.out
}

func (s *recordSink) record(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.writer(), line)
}

func (s *recordSink) Print(text string) {
	s.record("~" + quote(text+"\n"))
}

func (s *recordSink) Error(text string) {
	s.record("&" + quote(text+"\n"))
}

func (s *recordSink) Result(key, value string) {
	s.record(fmt.Sprintf("^done,%s=%s", key, quote(value)))
}

func (s *recordSink) setLogging(cfg domain.LogConfig) error {
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

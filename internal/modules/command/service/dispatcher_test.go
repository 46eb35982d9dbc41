package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dbgsh/internal/modules/command/domain"
	commandout "dbgsh/internal/modules/command/port/out"
	"dbgsh/internal/modules/command/service"
	interpdomain "dbgsh/internal/modules/interp/domain"
	interpdto "dbgsh/internal/modules/interp/dto"
	"dbgsh/internal/platform/clock"
	apperrors "dbgsh/internal/platform/errors"
	"dbgsh/internal/platform/id"
	"dbgsh/internal/platform/logx"
)

type recordingSink struct {
	lines  []string
	errs   []string
	result map[string]string
}

func (s *recordingSink) Print(text string) { s.lines = append(s.lines, text) }
func (s *recordingSink) Error(text string) { s.errs = append(s.errs, text) }
func (s *recordingSink) Result(key, value string) {
	if s.result == nil {
		s.result = map[string]string{}
	}
	s.result[key] = value
}

type testInterp struct {
	interpdomain.Base
	sink *recordingSink
}

func newTestInterp(name string) *testInterp {
	return &testInterp{Base: interpdomain.NewBase(name), sink: &recordingSink{}}
}

func (t *testInterp) Resume()  {}
func (t *testInterp) Suspend() {}

func (t *testInterp) Exec(context.Context, string) error { return nil }

func (t *testInterp) Sink() interpdomain.Sink { return t.sink }

func (t *testInterp) SetLogging(interpdomain.LogConfig) error { return nil }

type fakeInterpControl struct {
	sessionID     string
	execWithCalls []string
	logInputs     []interpdto.LogInput
	commandErrors int
}

func (f *fakeInterpControl) ExecWith(_ context.Context, sessionID, kind, command string) error {
	f.execWithCalls = append(f.execWithCalls, sessionID+"|"+kind+"|"+command)
	return nil
}

func (f *fakeInterpControl) SessionIDOf(interpdomain.Interp) (string, error) {
	return f.sessionID, nil
}

func (f *fakeInterpControl) SetLogging(_ context.Context, _ string, input interpdto.LogInput) error {
	f.logInputs = append(f.logInputs, input)
	return nil
}

func (f *fakeInterpControl) NotifyCommandError() { f.commandErrors++ }

type fakeEngine struct {
	calls []string
}

func (f *fakeEngine) Run(_ context.Context, executable string) error {
	f.calls = append(f.calls, "run "+executable)
	return nil
}

func (f *fakeEngine) Continue(context.Context) error {
	f.calls = append(f.calls, "continue")
	return nil
}

func (f *fakeEngine) Step(context.Context) error {
	f.calls = append(f.calls, "step")
	return nil
}

func (f *fakeEngine) ReverseContinue(context.Context) error {
	f.calls = append(f.calls, "reverse-continue")
	return nil
}

func (f *fakeEngine) Interrupt(context.Context) error {
	f.calls = append(f.calls, "interrupt")
	return nil
}

func (f *fakeEngine) Kill(context.Context) error {
	f.calls = append(f.calls, "kill")
	return nil
}

func (f *fakeEngine) SelectThread(_ context.Context, globalID int) error {
	f.calls = append(f.calls, "thread")
	return nil
}

func (f *fakeEngine) SelectInferior(_ context.Context, num int) error {
	f.calls = append(f.calls, "inferior")
	return nil
}

type memoryHistory struct {
	entries []domain.HistoryEntry
}

func (m *memoryHistory) Append(_ context.Context, entry domain.HistoryEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryHistory) Recent(_ context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error) {
	out := []domain.HistoryEntry{}
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if sessionID != "" && m.entries[i].SessionID != sessionID {
			continue
		}
		out = append(out, m.entries[i])
	}
	return out, nil
}

func newDispatcher(control *fakeInterpControl, engine commandout.Engine, history commandout.HistoryStore) *service.Dispatcher {
	return service.NewDispatcher(control, engine, history,
		clock.Fixed{At: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		&id.Sequential{}, logx.Discard())
}

func TestDispatcherEchoPrintsThroughArrivingSink(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	if err := dispatcher.Run(context.Background(), via, "echo hello world"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(via.sink.lines) != 1 || via.sink.lines[0] != "hello world" {
		t.Fatalf("sink lines = %v", via.sink.lines)
	}
}

func TestDispatcherRecordsHistoryPerSession(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	history := &memoryHistory{}
	dispatcher := newDispatcher(control, &fakeEngine{}, history)
	via := newTestInterp("console")

	if err := dispatcher.Run(context.Background(), via, "echo one"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(history.entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history.entries))
	}
	entry := history.entries[0]
	if entry.SessionID != "ui1" || entry.Interp != "console" || entry.Command != "echo one" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestDispatcherUnknownCommandNotifiesError(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	err := dispatcher.Run(context.Background(), via, "frobnicate")
	if !errors.Is(err, apperrors.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if control.commandErrors != 1 {
		t.Fatalf("expected one command-error notification, got %d", control.commandErrors)
	}
}

func TestDispatcherInterpreterExecDelegatesScoped(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	if err := dispatcher.Run(context.Background(), via, "interpreter-exec mi4 -break-insert main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(control.execWithCalls) != 1 || control.execWithCalls[0] != "ui1|mi4|-break-insert main" {
		t.Fatalf("exec-with calls = %v", control.execWithCalls)
	}
}

func TestDispatcherInterpreterExecUsage(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	err := dispatcher.Run(context.Background(), via, "interpreter-exec mi4")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDispatcherRoutesExecutionCommands(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	engine := &fakeEngine{}
	dispatcher := newDispatcher(control, engine, &memoryHistory{})
	via := newTestInterp("console")

	for _, line := range []string{
		"run ./target", "continue", "s", "reverse-continue", "interrupt", "kill", "thread 2", "inferior 1",
	} {
		if err := dispatcher.Run(context.Background(), via, line); err != nil {
			t.Fatalf("run %q: %v", line, err)
		}
	}
	want := []string{"run ./target", "continue", "step", "reverse-continue", "interrupt", "kill", "thread", "inferior"}
	if len(engine.calls) != len(want) {
		t.Fatalf("engine calls %v, want %v", engine.calls, want)
	}
	for i := range want {
		if engine.calls[i] != want[i] {
			t.Fatalf("engine calls[%d] = %q, want %q", i, engine.calls[i], want[i])
		}
	}
}

func TestDispatcherSetLoggingOnOff(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	if err := dispatcher.Run(context.Background(), via, "set logging on /tmp/gdb.txt"); err != nil {
		t.Fatalf("logging on: %v", err)
	}
	if err := dispatcher.Run(context.Background(), via, "set logging off"); err != nil {
		t.Fatalf("logging off: %v", err)
	}
	if len(control.logInputs) != 2 {
		t.Fatalf("expected two logging calls, got %d", len(control.logInputs))
	}
	if !control.logInputs[0].Enabled || control.logInputs[0].Path != "/tmp/gdb.txt" {
		t.Fatalf("first logging input = %+v", control.logInputs[0])
	}
	if control.logInputs[1].Enabled {
		t.Fatalf("second logging input should disable logging: %+v", control.logInputs[1])
	}
}

func TestDispatcherHistoryCommandPrintsOldestFirst(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	for _, line := range []string{"echo a", "echo b", "echo c"} {
		if err := dispatcher.Run(context.Background(), via, line); err != nil {
			t.Fatalf("run %q: %v", line, err)
		}
	}
	via.sink.lines = nil
	if err := dispatcher.Run(context.Background(), via, "history 2"); err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(via.sink.lines) != 2 {
		t.Fatalf("history lines = %v", via.sink.lines)
	}
	// Newest two, replayed oldest first.
	if via.sink.lines[0] != "   1  echo b" || via.sink.lines[1] != "   2  echo c" {
		t.Fatalf("history lines = %q", via.sink.lines)
	}
}

func TestDispatcherBlankLineIsNoop(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	history := &memoryHistory{}
	dispatcher := newDispatcher(control, &fakeEngine{}, history)
	via := newTestInterp("console")

	if err := dispatcher.Run(context.Background(), via, "   "); err != nil {
		t.Fatalf("run blank: %v", err)
	}
	if len(history.entries) != 0 {
		t.Fatalf("blank lines must not be recorded: %v", history.entries)
	}
}

func TestDispatcherThreadUsage(t *testing.T) {
	t.Parallel()
	control := &fakeInterpControl{sessionID: "ui1"}
	dispatcher := newDispatcher(control, &fakeEngine{}, &memoryHistory{})
	via := newTestInterp("console")

	err := dispatcher.Run(context.Background(), via, "thread two")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dbgsh/internal/modules/interp/domain"
	"dbgsh/internal/modules/interp/service"
	apperrors "dbgsh/internal/platform/errors"
	"dbgsh/internal/platform/id"
	"dbgsh/internal/platform/logx"
)

type nopSink struct{}

func (nopSink) Print(string)          {}
func (nopSink) Error(string)          {}
func (nopSink) Result(string, string) {}

// fakeInterp journals lifecycle calls and event deliveries. The journal is
// shared by every instance a test creates, so cross-instance ordering shows.
type fakeInterp struct {
	domain.Base
	journal   *[]string
	hookPanic bool
}

func (f *fakeInterp) log(entry string) {
	*f.journal = append(*f.journal, entry+" "+f.Name())
}

func (f *fakeInterp) Init(topLevel bool) error {
	*f.journal = append(*f.journal, fmt.Sprintf("init %s top=%t", f.Name(), topLevel))
	return nil
}

func (f *fakeInterp) Resume()  { f.log("resume") }
func (f *fakeInterp) Suspend() { f.log("suspend") }

func (f *fakeInterp) Exec(_ context.Context, command string) error {
	*f.journal = append(*f.journal, "exec "+f.Name()+" "+command)
	return nil
}

func (f *fakeInterp) Sink() domain.Sink { return nopSink{} }

func (f *fakeInterp) SetLogging(domain.LogConfig) error { return nil }

func (f *fakeInterp) OnNormalStop(domain.StopInfo) {
	if f.hookPanic {
		panic("hook exploded")
	}
	f.log("normal-stop")
}

func (f *fakeInterp) OnExited(status int) {
	*f.journal = append(*f.journal, fmt.Sprintf("exited %s %d", f.Name(), status))
}

func newController(t *testing.T, journal *[]string, panicKinds ...string) *service.InterpService {
	t.Helper()
	panics := map[string]bool{}
	for _, kind := range panicKinds {
		panics[kind] = true
	}
	reg := domain.NewRegistry()
	for _, kind := range []string{"console", "mi2", "mi4", "tui"} {
		kind := kind
		reg.Register(kind, func(name string) domain.Interp {
			return &fakeInterp{Base: domain.NewBase(name), journal: journal, hookPanic: panics[kind]}
		})
	}
	return service.NewInterpService(reg, &id.Sequential{}, logx.Discard())
}

func TestNewSessionActivatesTopLevel(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)

	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if sess.TopLevelName() != "console" {
		t.Fatalf("top level = %s, want console", sess.TopLevelName())
	}
	cur, err := sess.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Name() != "console" {
		t.Fatalf("current = %s, want console", cur.Name())
	}
	want := []string{"init console top=true", "resume console"}
	for i := range want {
		if journal[i] != want[i] {
			t.Fatalf("journal %v, want prefix %v", journal, want)
		}
	}
}

func TestNewSessionUnknownKindFailsHard(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)

	_, err := svc.NewSession("bogus")
	if !errors.Is(err, apperrors.ErrInterpNotFound) {
		t.Fatalf("expected ErrInterpNotFound, got %v", err)
	}
}

func TestSetCurrentReturnsPrevious(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	prev, err := svc.SetCurrent(sess, "mi2")
	if err != nil {
		t.Fatalf("set current: %v", err)
	}
	if prev == nil || prev.Name() != "console" {
		t.Fatalf("previous = %v, want console", prev)
	}
	if !sess.CurrentNamed("mi2") {
		t.Fatalf("current should be mi2")
	}
}

func TestWithCurrentRestoresOnSuccess(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	err = svc.WithCurrent(sess, "mi4", func(in domain.Interp) error {
		if in.Name() != "mi4" {
			t.Fatalf("scoped interpreter = %s, want mi4", in.Name())
		}
		if !sess.CurrentNamed("mi4") {
			t.Fatalf("mi4 should be current inside the scope")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with current: %v", err)
	}
	if !sess.CurrentNamed("console") {
		t.Fatalf("console should be current again after the scope")
	}
}

func TestWithCurrentRestoresOnError(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	boom := errors.New("command failed")
	if err := svc.WithCurrent(sess, "mi4", func(domain.Interp) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if !sess.CurrentNamed("console") {
		t.Fatalf("console should be current again after a failing scope")
	}
}

func TestWithCurrentRestoresOnPanic(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the panic to propagate")
			}
		}()
		_ = svc.WithCurrent(sess, "mi4", func(domain.Interp) error { panic("mid-scope") })
	}()
	if !sess.CurrentNamed("console") {
		t.Fatalf("console should be current again after a panicking scope")
	}
}

func TestWithCurrentNests(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	err = svc.WithCurrent(sess, "mi4", func(domain.Interp) error {
		return svc.WithCurrent(sess, "tui", func(in domain.Interp) error {
			if in.Name() != "tui" {
				t.Fatalf("inner scope = %s, want tui", in.Name())
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested scopes: %v", err)
	}
	if !sess.CurrentNamed("console") {
		t.Fatalf("unwinding both scopes should land on console")
	}
}

func TestWithCurrentNestsBackToOuter(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	// While mi2 is current, scope back to console and out again: the inner
	// restore lands on mi2, the outer on console.
	err = svc.WithCurrent(sess, "mi2", func(domain.Interp) error {
		if err := svc.WithCurrent(sess, "console", func(in domain.Interp) error {
			if in.Name() != "console" {
				t.Fatalf("inner scope = %s, want console", in.Name())
			}
			return nil
		}); err != nil {
			return err
		}
		if !sess.CurrentNamed("mi2") {
			t.Fatalf("mi2 should be current again between the scopes")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("nested scopes: %v", err)
	}
	if !sess.CurrentNamed("console") {
		t.Fatalf("outer restoration must land on console")
	}
}

func TestWithCurrentUnknownKindLeavesCurrent(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	err = svc.WithCurrent(sess, "bogus", func(domain.Interp) error {
		t.Fatalf("callback must not run for an unknown kind")
		return nil
	})
	if !errors.Is(err, apperrors.ErrInterpNotFound) {
		t.Fatalf("expected ErrInterpNotFound, got %v", err)
	}
	if !sess.CurrentNamed("console") {
		t.Fatalf("console must stay current after a failed scope")
	}
}

func TestExecWithRunsUnderScopedInterp(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if err := svc.ExecWith(context.Background(), sess, "mi2", "-break-insert main"); err != nil {
		t.Fatalf("exec with: %v", err)
	}
	found := false
	for _, entry := range journal {
		if entry == "exec mi2 -break-insert main" {
			found = true
		}
	}
	if !found {
		t.Fatalf("mi2 never executed the command: %v", journal)
	}
	if !sess.CurrentNamed("console") {
		t.Fatalf("console should be current after interpreter-exec")
	}
}

func TestBroadcastReachesEveryInterpInEverySession(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)

	first, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	if _, err := svc.LookupOrCreate(first, "mi4"); err != nil {
		t.Fatalf("instantiate mi4: %v", err)
	}
	if _, err := svc.NewSession("tui"); err != nil {
		t.Fatalf("second session: %v", err)
	}

	journal = journal[:0]
	svc.NotifyNormalStop(domain.StopInfo{Reason: domain.StopBreakpointHit, Frame: "main"})

	want := []string{"normal-stop console", "normal-stop mi4", "normal-stop tui"}
	if len(journal) != len(want) {
		t.Fatalf("deliveries %v, want %v", journal, want)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Fatalf("deliveries[%d] = %q, want %q", i, journal[i], want[i])
		}
	}
}

func TestBroadcastContainsPanickingHook(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal, "console")

	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := svc.LookupOrCreate(sess, "mi4"); err != nil {
		t.Fatalf("instantiate mi4: %v", err)
	}

	journal = journal[:0]
	svc.NotifyNormalStop(domain.StopInfo{Frame: "main"})

	if len(journal) != 1 || journal[0] != "normal-stop mi4" {
		t.Fatalf("mi4 must still observe the event, got %v", journal)
	}
}

func TestClosedSessionDropsOutOfFanOut(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)

	keep, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	gone, err := svc.NewSession("mi4")
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if err := svc.CloseSession(gone.ID()); err != nil {
		t.Fatalf("close session: %v", err)
	}

	journal = journal[:0]
	svc.NotifyExited(0)

	if len(journal) != 1 || journal[0] != "exited console 0" {
		t.Fatalf("only %s's console should hear the event, got %v", keep.ID(), journal)
	}
}

func TestSessionOfResolvesOwner(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)

	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	cur, err := sess.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	owner, err := svc.SessionOf(cur)
	if err != nil {
		t.Fatalf("session of: %v", err)
	}
	if owner.ID() != sess.ID() {
		t.Fatalf("owner = %s, want %s", owner.ID(), sess.ID())
	}
}

func TestConsoleToMISwitchScenario(t *testing.T) {
	t.Parallel()
	journal := []string{}
	svc := newController(t, &journal)
	sess, err := svc.NewSession("console")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	prev, err := svc.SetCurrent(sess, "mi2")
	if err != nil {
		t.Fatalf("switch to mi2: %v", err)
	}
	if prev.Name() != "console" {
		t.Fatalf("previous = %s, want console", prev.Name())
	}

	want := []string{
		"init console top=true",
		"resume console",
		"init mi2 top=false",
		"suspend console",
		"resume mi2",
	}
	if len(journal) != len(want) {
		t.Fatalf("journal %v, want %v", journal, want)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Fatalf("journal[%d] = %q, want %q", i, journal[i], want[i])
		}
	}
}

package domain

import "context"

// Well-known interpreter kinds. Machine-interface protocol revisions register
// side by side; KindMI is an alias for the newest revision. Out-of-process
// front-ends register under KindExtensionPrefix plus their manifest name.
const (
	KindConsole = "console"
	KindMI      = "mi"
	KindMI2     = "mi2"
	KindMI3     = "mi3"
	KindMI4     = "mi4"
	KindTUI     = "tui"

	KindExtensionPrefix = "ext:"
)

// Interp is one instantiated front-end interpreter. The controller drives it
// through this capability set and never inspects the concrete type. Exactly
// one interpreter per UI session is resumed at any instant; Suspend on the
// outgoing instance always happens before Resume on the incoming one.
//
// The notification hooks are one-way: they must not fail outward. A hook that
// panics is contained at the fan-out boundary, but implementations should not
// rely on that.
type Interp interface {
	// Name reports the kind this instance was created under.
	Name() string

	// Init runs one-time setup before the first Resume. topLevel is true
	// when this instance is its session's designated top-level interpreter.
	Init(topLevel bool) error

	// Resume makes this interpreter the active output target. Safe to call
	// when already active.
	Resume()

	// Suspend releases active status. Always paired with a prior Resume.
	Suspend()

	// Exec runs one command line through this interpreter's command path.
	// Execution may reenter the controller and switch interpreters.
	Exec(ctx context.Context, command string) error

	// Sink returns the collector currently receiving formatted results.
	Sink() Sink

	// SetLogging reconfigures output duplication when session logging
	// toggles. A nil LogConfig.File signals the end of logging.
	SetLogging(cfg LogConfig) error

	// PreCommandLoop runs before the read-eval loop starts, e.g. to print
	// a prompt.
	PreCommandLoop()

	// SupportsCommandEditing reports whether this front-end drives its own
	// line editing.
	SupportsCommandEditing() bool

	EventHooks
}

// EventHooks are the engine-event notifications delivered by the fan-out.
// Every live interpreter in every session observes every event, current or
// not.
type EventHooks interface {
	// OnSignalReceived: the inferior stopped with a signal.
	OnSignalReceived(sig Signal)
	// OnSignalExited: the inferior was terminated by a signal.
	OnSignalExited(sig Signal)
	// OnNormalStop: the inferior stopped normally (breakpoint, step end).
	OnNormalStop(stop StopInfo)
	// OnExited: the inferior exited with a status code.
	OnExited(status int)
	// OnNoHistory: reverse execution ran out of recorded history.
	OnNoHistory()
	// OnSyncExecutionDone: a synchronous execution command finished.
	OnSyncExecutionDone()
	// OnCommandError: a command failed while executing.
	OnCommandError()
	// OnUserSelectedContextChanged: the user focus moved.
	OnUserSelectedContextChanged(sel UserSelection)
	// OnNewThread: a thread appeared.
	OnNewThread(t Thread)
	// OnThreadExited: a thread went away; silent suppresses user output.
	OnThreadExited(t Thread, silent bool)
	// OnInferiorAdded: an inferior slot was created.
	OnInferiorAdded(inf Inferior)
	// OnInferiorAppeared: an inferior started running or was attached.
	OnInferiorAppeared(inf Inferior)
}

// Runner is the command path an interpreter's Exec delegates to. via is the
// interpreter the line arrived on; the dispatcher resolves the owning session
// from it.
type Runner interface {
	Run(ctx context.Context, via Interp, line string) error
}

// Base carries the kind name and the default no-op bodies for the optional
// parts of the Interp contract. Concrete kinds embed it and implement
// Resume, Suspend, Exec, Sink and SetLogging themselves.
type Base struct {
	name string
}

func NewBase(name string) Base {
	return Base{name: name}
}

func (b Base) Name() string { return b.name }

func (Base) Init(bool) error { return nil }

func (Base) PreCommandLoop() {}

func (Base) SupportsCommandEditing() bool { return false }

func (Base) OnSignalReceived(Signal) {}

func (Base) OnSignalExited(Signal) {}

func (Base) OnNormalStop(StopInfo) {}

func (Base) OnExited(int) {}

func (Base) OnNoHistory() {}

func (Base) OnSyncExecutionDone() {}

func (Base) OnCommandError() {}

func (Base) OnUserSelectedContextChanged(UserSelection) {}

func (Base) OnNewThread(Thread) {}

func (Base) OnThreadExited(Thread, bool) {}

func (Base) OnInferiorAdded(Inferior) {}

func (Base) OnInferiorAppeared(Inferior) {}

package service

import (
	"context"
	"fmt"
	"sync"

	"dbgsh/internal/modules/engine/domain"
	engineout "dbgsh/internal/modules/engine/port/out"
	interpdomain "dbgsh/internal/modules/interp/domain"
)

// Engine simulates one debugged process and drives the interpreter fan-out
// with the events a real execution engine would produce. One engine is
// shared by every UI session; interpreter switching never affects which
// events fire, only how each front-end renders them.
type Engine struct {
	notifier engineout.Notifier
	script   domain.Script

	mu       sync.Mutex
	inferior interpdomain.Inferior
	thread   interpdomain.Thread
	added    bool
	alive    bool
	stopIdx  int
	recorded int
}

func NewEngine(notifier engineout.Notifier, script domain.Script) *Engine {
	if len(script.Frames) == 0 {
		script = domain.DefaultScript()
	}
	return &Engine{notifier: notifier, script: script}
}

// Run starts (or restarts) the inferior and stops it at the first frame of
// the script, as if an initial breakpoint were hit.
func (e *Engine) Run(_ context.Context, executable string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if executable == "" {
		executable = e.inferior.Executable
	}
	if executable == "" {
		executable = "a.out"
	}
	e.inferior = interpdomain.Inferior{Num: 1, PID: 1000 + e.inferior.PID%1000 + 1, Executable: executable}
	e.thread = interpdomain.Thread{GlobalID: 1, InferiorNum: 1, Name: "main"}
	e.alive = true
	e.stopIdx = 0
	e.recorded = 0

	if !e.added {
		e.added = true
		e.notifier.NotifyInferiorAdded(e.inferior)
	}
	e.notifier.NotifyInferiorAppeared(e.inferior)
	e.notifier.NotifyNewThread(e.thread)
	e.notifier.NotifyNormalStop(interpdomain.StopInfo{
		Reason:     interpdomain.StopBreakpointHit,
		Breakpoint: 1,
		Frame:      e.script.Frames[0],
		PrintFrame: true,
	})
	e.notifier.NotifySyncExecutionDone()
	return nil
}

// Continue resumes until the next scripted stop, or lets the inferior exit
// when the script is exhausted.
func (e *Engine) Continue(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return domain.ErrNoInferior
	}
	e.recorded++
	e.stopIdx++
	if e.stopIdx < len(e.script.Frames) {
		if e.stopIdx == 1 {
			// The target spawns a worker on its way to the second stop.
			worker := interpdomain.Thread{GlobalID: 2, InferiorNum: 1, Name: "worker"}
			e.notifier.NotifyNewThread(worker)
		}
		e.notifier.NotifyNormalStop(interpdomain.StopInfo{
			Reason:     interpdomain.StopBreakpointHit,
			Breakpoint: e.stopIdx + 1,
			Frame:      e.script.Frames[e.stopIdx],
			PrintFrame: true,
		})
		e.notifier.NotifySyncExecutionDone()
		return nil
	}
	e.alive = false
	e.notifier.NotifyThreadExited(e.thread, true)
	e.notifier.NotifyExited(e.script.ExitStatus)
	e.notifier.NotifySyncExecutionDone()
	return nil
}

// Step advances one step and stops in the current frame.
func (e *Engine) Step(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return domain.ErrNoInferior
	}
	e.recorded++
	e.notifier.NotifyNormalStop(interpdomain.StopInfo{
		Reason:     interpdomain.StopEndSteppingRange,
		Frame:      e.script.Frames[e.stopIdx],
		PrintFrame: true,
	})
	e.notifier.NotifySyncExecutionDone()
	return nil
}

// ReverseContinue replays recorded execution backwards; with nothing
// recorded it reports the end of history to every interpreter.
func (e *Engine) ReverseContinue(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return domain.ErrNoInferior
	}
	if e.recorded == 0 {
		e.notifier.NotifyNoHistory()
		return nil
	}
	e.recorded--
	if e.stopIdx > 0 {
		e.stopIdx--
	}
	e.notifier.NotifyNormalStop(interpdomain.StopInfo{
		Reason:     interpdomain.StopBreakpointHit,
		Breakpoint: e.stopIdx + 1,
		Frame:      e.script.Frames[e.stopIdx],
		PrintFrame: true,
	})
	e.notifier.NotifySyncExecutionDone()
	return nil
}

// Kill terminates the inferior with SIGKILL.
func (e *Engine) Kill(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return domain.ErrNoInferior
	}
	e.alive = false
	e.notifier.NotifyThreadExited(e.thread, false)
	e.notifier.NotifySignalExited(interpdomain.Signal{Num: 9, Name: "SIGKILL"})
	return nil
}

// Interrupt delivers SIGINT to the running inferior.
func (e *Engine) Interrupt(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return domain.ErrNoInferior
	}
	e.notifier.NotifySignalReceived(interpdomain.Signal{Num: 2, Name: "SIGINT"})
	return nil
}

// SelectThread moves the user focus to a thread.
func (e *Engine) SelectThread(_ context.Context, globalID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return domain.ErrNoInferior
	}
	if globalID != e.thread.GlobalID && globalID != 2 {
		return fmt.Errorf("%w: %d", domain.ErrUnknownThread, globalID)
	}
	e.notifier.NotifyUserSelectedContextChanged(interpdomain.SelectedThread | interpdomain.SelectedFrame)
	return nil
}

// SelectInferior moves the user focus to an inferior.
func (e *Engine) SelectInferior(_ context.Context, num int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if num != e.inferior.Num {
		return fmt.Errorf("%w: %d", domain.ErrUnknownInferior, num)
	}
	e.notifier.NotifyUserSelectedContextChanged(interpdomain.SelectedInferior)
	return nil
}

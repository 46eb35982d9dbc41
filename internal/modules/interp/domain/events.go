package domain

import "io"

// Signal identifies a POSIX-style signal delivered to or terminating the
// inferior.
type Signal struct {
	Num  int
	Name string
}

type StopReason string

const (
	StopBreakpointHit    StopReason = "breakpoint-hit"
	StopEndSteppingRange StopReason = "end-stepping-range"
	StopSignalReceived   StopReason = "signal-received"
)

// StopInfo is the payload of a normal-stop event: which breakpoint (0 when
// none), the frame the inferior stopped in, and whether front-ends should
// print that frame.
type StopInfo struct {
	Reason     StopReason
	Breakpoint int
	Frame      string
	PrintFrame bool
}

// Thread is the engine's view of one inferior thread.
type Thread struct {
	GlobalID    int
	InferiorNum int
	Name        string
}

// Inferior is one debugged process slot.
type Inferior struct {
	Num        int
	PID        int
	Executable string
}

// UserSelection is a bit set describing which part of the user focus moved.
type UserSelection uint8

const (
	SelectedInferior UserSelection = 1 << iota
	SelectedThread
	SelectedFrame
)

func (s UserSelection) Has(flag UserSelection) bool {
	return s&flag != 0
}

// Sink collects an interpreter's formatted results. Console-style sinks
// stream plain text; protocol sinks frame records from Result fields.
type Sink interface {
	Print(text string)
	Error(text string)
	Result(key, value string)
}

// LogConfig is passed through to the current interpreter when session
// logging toggles. File nil means logging ends. Redirect sends output only
// to the logfile instead of duplicating it; DebugRedirect is the same knob
// for debug output.
type LogConfig struct {
	File          io.WriteCloser
	Redirect      bool
	DebugRedirect bool
}

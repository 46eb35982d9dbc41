package domain

import "errors"

var (
	ErrNoInferior      = errors.New("the program is not being run")
	ErrUnknownThread   = errors.New("unknown thread")
	ErrUnknownInferior = errors.New("unknown inferior")
)

// Script is the deterministic behavior of the simulated target: the frames
// the inferior stops in on successive continues, and its final exit status.
// Real target control (ptrace, remote protocols) is out of scope; the script
// exists so the notification fan-out has a real producer.
type Script struct {
	Frames     []string
	ExitStatus int
}

func DefaultScript() Script {
	return Script{
		Frames:     []string{"main", "compute", "flush"},
		ExitStatus: 0,
	}
}

package logx

import (
	"io"

	hclog "github.com/hashicorp/go-hclog"
)

// New builds the process logger. Level names follow hclog ("trace", "debug",
// "info", "warn", "error"); unknown names fall back to warn.
func New(name, level string, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: out,
	})
}

// Discard is handy for tests and for plugin clients that should stay quiet.
func Discard() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel})
}

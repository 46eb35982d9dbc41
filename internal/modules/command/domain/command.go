package domain

import (
	"strings"
	"time"
)

// HistoryEntry is one executed command line, recorded per UI session.
type HistoryEntry struct {
	ID        string
	SessionID string
	Interp    string
	Command   string
	At        time.Time
}

// Split separates a command line into its name and argument rest.
func Split(line string) (name, rest string) {
	line = strings.TrimSpace(line)
	name, rest, _ = strings.Cut(line, " ")
	return name, strings.TrimSpace(rest)
}

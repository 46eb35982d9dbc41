package dto

import "time"

type HistoryEntry struct {
	SessionID string
	Interp    string
	Command   string
	At        time.Time
}

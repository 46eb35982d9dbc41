package dto

type SessionInfo struct {
	ID       string
	TopLevel string
	Current  string
}

type InterpInfo struct {
	Name        string
	Current     bool
	TopLevel    bool
	Initialized bool
}

type SwitchOutput struct {
	SessionID string
	Previous  string
	Current   string
}

// LogInput describes a logging toggle. Enabled false ends logging; Path is
// the logfile destination while enabled.
type LogInput struct {
	Enabled       bool
	Path          string
	Redirect      bool
	DebugRedirect bool
}

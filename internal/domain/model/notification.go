package model

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// NoticeTTL is how long a notification stays on screen before auto-dismissal.
const NoticeTTL = 5 * time.Second

// Notice is one transient status message shown to the user.
type Notice struct {
	ID       string
	Message  string
	Severity Severity
	ShownAt  time.Time
}

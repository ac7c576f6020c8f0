// Package ops implements the user-facing loop operations: closing open
// loops, growing and shrinking boundary selections and cycling through the
// loops under the pointer.
package ops

import "fmt"

// Status tells whether an operation ran to completion.
type Status int

const (
	Finished Status = iota
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "finished":
		*s = Finished
	case "cancelled":
		*s = Cancelled
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Level is the severity of an outcome's message.
type Level int

const (
	Info Level = iota
	Warning
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*l = Info
	case "warning":
		*l = Warning
	default:
		return fmt.Errorf("unknown level %q", text)
	}
	return nil
}

// Outcome is the result of an operation as reported to the user.
type Outcome struct {
	Status  Status `json:"status"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func finished(format string, args ...any) Outcome {
	return Outcome{Status: Finished, Level: Info, Message: fmt.Sprintf(format, args...)}
}

func finishedWarning(msg string) Outcome {
	return Outcome{Status: Finished, Level: Warning, Message: msg}
}

func cancelled(msg string) Outcome {
	return Outcome{Status: Cancelled, Level: Warning, Message: msg}
}

func hostError(err error) Outcome {
	return cancelled(err.Error())
}

// Ok reports whether the operation finished without a warning.
func (o Outcome) Ok() bool {
	return o.Status == Finished && o.Level == Info
}

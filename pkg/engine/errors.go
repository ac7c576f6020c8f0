package engine

import "fmt"

// EngineNotRunningError is returned when an operation requires the engine to be running.
type EngineNotRunningError struct{}

func (e *EngineNotRunningError) Error() string {
	return "engine is not running"
}

// MeshBusyError is returned when another operation held the mesh until the
// caller's context ended.
type MeshBusyError struct {
	MeshID string
	Cause  error
}

func (e *MeshBusyError) Error() string {
	return fmt.Sprintf("mesh %q is busy: %v", e.MeshID, e.Cause)
}

func (e *MeshBusyError) Unwrap() error { return e.Cause }

// InvalidRequestError is returned for arguments that cannot be acted on,
// such as an unknown resize mode.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

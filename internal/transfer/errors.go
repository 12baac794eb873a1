package transfer

import "fmt"

// Op names the remote operation that failed.
type Op string

const (
	OpUpload  Op = "upload"
	OpPreview Op = "preview"
	OpProcess Op = "process"
	OpPing    Op = "ping"
)

// NetworkError reports a transport-level failure: the service could not be
// reached, answered with an unexpected status, or sent a body that is not
// the documented JSON shape.
type NetworkError struct {
	Op     Op
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError reports that the service was reached but answered with
// success false (or without a success field).
type RejectedError struct {
	Op      Op
	Message string // Service-provided reason, may be empty
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected by service: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s rejected by service", e.Op)
}

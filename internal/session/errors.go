package session

import "errors"

// Messages shown in place of a report.
const (
	MsgLocked        = "🔒 Access locked. Enter a valid license key to continue."
	MsgMissingUpload = "⚠️ Please upload BOTH files to start."
)

var (
	// ErrLocked is returned when a locked session asks for a report.
	ErrLocked = errors.New("session is locked")
	// ErrMissingUpload is returned when either document is absent.
	ErrMissingUpload = errors.New("both resume and job description are required")
	// ErrNotFound is returned by the registry for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)

// PipelineError represents a hard failure of the generate pipeline
type PipelineError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return e.Stage + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Stage + ": " + e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

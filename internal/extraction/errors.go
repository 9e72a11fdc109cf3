package extraction

import "fmt"

// ExtractError describes why a document could not be read.
type ExtractError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}

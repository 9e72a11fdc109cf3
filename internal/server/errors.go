package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/career-architect/internal/rendering"
	"github.com/jonathan/career-architect/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNoReport indicates the session has not published a report yet
type ErrNoReport struct{}

func (e *ErrNoReport) Error() string {
	return "no report has been generated for this session"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var noReport *ErrNoReport
	var pipeline *session.PipelineError
	var render *rendering.RenderError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.Is(err, session.ErrMissingUpload):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrLocked):
		return http.StatusForbidden
	case errors.As(err, &noReport), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &pipeline), errors.As(err, &render):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusCompleted        = "completed"
	RunStatusGenerationFailed = "generation_failed"
	RunStatusRenderFailed     = "render_failed"
)

// Run is one generate call. It holds no license material and no document text.
type Run struct {
	ID               uuid.UUID `json:"id"`
	SessionID        string    `json:"session_id"`
	Status           string    `json:"status"`
	Model            string    `json:"model"`
	ResumePages      int       `json:"resume_pages"`
	JobPages         int       `json:"job_pages"`
	ExtractionFailed bool      `json:"extraction_failed"`
	ReportBytes      int       `json:"report_bytes"`
	DurationMs       int64     `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Package types provides the request and response shapes of the HTTP API.
package types

import (
	"github.com/go-playground/validator/v10"
)

// MaxLicenseKeyLength bounds the key accepted from clients
const MaxLicenseKeyLength = 256

var validate = validator.New()

// LoginRequest represents the license login request. An empty key is allowed
// through; the verifier denies it as a missing key.
type LoginRequest struct {
	LicenseKey string `json:"license_key" validate:"max=256"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// LoginResponse reports the access decision and resulting session state.
type LoginResponse struct {
	Granted  bool   `json:"granted"`
	Reason   string `json:"reason"`
	Outcome  string `json:"outcome"`
	Unlocked bool   `json:"unlocked"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Unlocked  bool   `json:"unlocked"`
	Message   string `json:"message,omitempty"`
	HasReport bool   `json:"has_report"`
}

// GenerateResponse carries the report text, or the message shown in its place,
// and where to download the PDF when one was published.
type GenerateResponse struct {
	Report           string `json:"report"`
	ReportURL        string `json:"report_url,omitempty"`
	RemoteURL        string `json:"remote_url,omitempty"`
	RunID            string `json:"run_id,omitempty"`
	ExtractionFailed bool   `json:"extraction_failed,omitempty"`
	GenerationFailed bool   `json:"generation_failed,omitempty"`
	Error            string `json:"error,omitempty"`
}

// ErrorResponse is the body of non-report error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jonathan/career-architect/internal/session"
	"github.com/jonathan/career-architect/internal/storage"
	"github.com/jonathan/career-architect/internal/types"
)

// Multipart field names of the generate form
const (
	FieldResume         = "resume"
	FieldJobDescription = "job_description"
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin verifies a license key for the caller's session
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid JSON"}, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "license_key", Message: err.Error()}, "")
		return
	}

	sess, err := s.register(w, r)
	if err != nil {
		s.errorResponse(w, err, "failed to start session")
		return
	}

	decision := sess.Login(r.Context(), req.LicenseKey)
	s.jsonResponse(w, http.StatusOK, types.LoginResponse{
		Granted:  decision.Granted,
		Reason:   decision.Reason,
		Outcome:  string(decision.Outcome),
		Unlocked: sess.Unlocked(),
	})
}

// handleSession describes the caller's session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)
	s.jsonResponse(w, http.StatusOK, types.SessionResponse{
		Unlocked:  sess.Unlocked(),
		Message:   sess.Message(),
		HasReport: sess.ReportPath() != "",
	})
}

// handleGenerate runs the report pipeline on the two uploaded documents.
// Soft failures come back as report text with 200.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)

	// Locked sessions never look at the uploads
	if !sess.Unlocked() {
		out, err := sess.Generate(r.Context(), "", "")
		s.generateResponse(w, out, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: err.Error()}, "upload rejected")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	dir, err := os.MkdirTemp("", "career-upload-*")
	if err != nil {
		s.errorResponse(w, err, "failed to stage uploads")
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	resumePath, err := stageUpload(r, FieldResume, dir)
	if err != nil {
		s.errorResponse(w, err, "failed to stage uploads")
		return
	}
	jobPath, err := stageUpload(r, FieldJobDescription, dir)
	if err != nil {
		s.errorResponse(w, err, "failed to stage uploads")
		return
	}

	out, err := sess.Generate(r.Context(), resumePath, jobPath)
	s.generateResponse(w, out, err)
}

func (s *Server) generateResponse(w http.ResponseWriter, out session.Outcome, err error) {
	resp := types.GenerateResponse{
		Report:           out.Report,
		RemoteURL:        out.RemoteURL,
		ExtractionFailed: out.ExtractionFailed,
		GenerationFailed: out.GenerationFailed,
	}
	if out.RunID != uuid.Nil {
		resp.RunID = out.RunID.String()
	}
	if out.ReportPath != "" {
		resp.ReportURL = "/api/report"
	}
	if err != nil {
		resp.Error = err.Error()
	}
	s.jsonResponse(w, HTTPStatus(err), resp)
}

// stageUpload copies the named form file into dir. A missing field yields an
// empty path so the session reports the missing upload itself.
func stageUpload(r *http.Request, field, dir string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return "", nil
	}

	src, err := headers[0].Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", field, err)
	}
	defer func() { _ = src.Close() }()

	path := filepath.Join(dir, field+".pdf")
	if err := storage.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	}); err != nil {
		return "", fmt.Errorf("failed to stage upload %s: %w", field, err)
	}
	return path, nil
}

// handleReport downloads the session's current report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)
	path := sess.ReportPath()
	if path == "" {
		s.errorResponse(w, &ErrNoReport{}, "")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.errorResponse(w, &ErrNoReport{}, "")
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		s.errorResponse(w, err, "failed to read report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.ReportFileName))
	http.ServeContent(w, r, storage.ReportFileName, info.ModTime(), f)
}

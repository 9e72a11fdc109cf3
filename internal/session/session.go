package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-architect/internal/db"
	"github.com/jonathan/career-architect/internal/extraction"
	"github.com/jonathan/career-architect/internal/licensing"
	"github.com/jonathan/career-architect/internal/logging"
)

// State is the access state of a session
type State string

// Session states. There is no transition out of StateUnlocked.
const (
	StateLocked   State = "LOCKED"
	StateUnlocked State = "UNLOCKED"
)

// Outcome is what a generate call hands back to the caller. Report always holds
// the text to show, whether that is the report itself or a failure message.
type Outcome struct {
	Report           string
	ReportPath       string // empty when no file was published
	RemoteURL        string // set when the object store mirror succeeded
	RunID            uuid.UUID
	Model            string
	ExtractionFailed bool
	GenerationFailed bool
}

// Session is one user's access state and report slot
type Session struct {
	id      string
	ctrl    *Controller
	created time.Time

	mu         sync.RWMutex
	state      State
	key        string
	message    string
	reportPath string

	// serializes Generate so runs never overlap on the session's report path
	genMu sync.Mutex
}

// NewSession mints a locked session with a random ID
func (c *Controller) NewSession() *Session {
	return c.newSession(uuid.NewString())
}

func (c *Controller) newSession(id string) *Session {
	return &Session{id: id, ctrl: c, created: time.Now(), state: StateLocked}
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was minted
func (s *Session) CreatedAt() time.Time {
	return s.created
}

// State returns the current access state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Unlocked reports whether the session has been granted access
func (s *Session) Unlocked() bool {
	return s.State() == StateUnlocked
}

// Message returns the last user-facing login message, empty after a grant
func (s *Session) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// KeyFingerprint identifies the stored license key without exposing it.
// It is "none" when no key is stored.
func (s *Session) KeyFingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return logging.Fingerprint(s.key)
}

// ReportPath returns the report published by the latest run, or "" when
// there is none or the latest run failed
func (s *Session) ReportPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportPath
}

func (s *Session) logger() *logrus.Entry {
	return s.ctrl.log.WithField("session_id", s.id)
}

// Login verifies key with the licensing service. A grant unlocks the session
// and stores the key. A deny on a locked session clears the stored key. An
// unlocked session stays unlocked whatever the verdict.
func (s *Session) Login(ctx context.Context, key string) licensing.Decision {
	key = strings.TrimSpace(key)
	decision := s.ctrl.deps.Verifier.Verify(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.logger().WithFields(logrus.Fields{
		"key":     logging.Fingerprint(key),
		"outcome": decision.Outcome,
	})

	if decision.Granted {
		s.state = StateUnlocked
		s.key = key
		s.message = ""
		entry.Info("session unlocked")
		return decision
	}

	s.message = decision.Reason
	if s.state == StateLocked {
		s.key = ""
	}
	entry.WithField("state", s.state).Warn("login denied")
	return decision
}

// Generate runs extraction, generation and rendering for one document pair.
//
// Soft failures (unreadable documents, generation errors) come back as an
// Outcome with a nil error and the failure text in Report. The returned error
// is ErrLocked, ErrMissingUpload, or a *PipelineError when the report could not
// be published.
func (s *Session) Generate(ctx context.Context, resumePath, jobPath string) (Outcome, error) {
	if !s.Unlocked() {
		return Outcome{Report: MsgLocked}, ErrLocked
	}
	if strings.TrimSpace(resumePath) == "" || strings.TrimSpace(jobPath) == "" {
		return Outcome{Report: MsgMissingUpload}, ErrMissingUpload
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	deps := s.ctrl.deps
	start := time.Now()
	runID := uuid.New()
	log := s.logger().WithField("run_id", runID)

	resume, job := s.extractBoth(resumePath, jobPath)
	out := Outcome{RunID: runID, ExtractionFailed: resume.Failed() || job.Failed()}
	if resume.Failed() {
		log.WithError(resume.Err).Warn("resume extraction failed, continuing with error text")
	}
	if job.Failed() {
		log.WithError(job.Err).Warn("job description extraction failed, continuing with error text")
	}

	run := db.Run{
		ID:               runID,
		SessionID:        s.id,
		ResumePages:      resume.Pages,
		JobPages:         job.Pages,
		ExtractionFailed: out.ExtractionFailed,
	}

	gen := deps.Generator.Generate(ctx, resume.Text, job.Text)
	out.Report = gen.Markdown
	out.Model = gen.Model
	run.Model = gen.Model
	if gen.Failed() {
		out.GenerationFailed = true
		s.clearReport()
		log.WithError(gen.Err).Warn("generation failed, returning error text")
		s.recordRun(ctx, log, run, db.RunStatusGenerationFailed, gen.Err, start)
		return out, nil
	}

	path, err := deps.Reports.ReportPath(s.id)
	if err != nil {
		s.clearReport()
		perr := &PipelineError{Stage: "render", Message: "failed to resolve report path", Cause: err}
		s.recordRun(ctx, log, run, db.RunStatusRenderFailed, perr, start)
		return out, perr
	}
	if err := deps.Renderer.RenderFile(gen.Markdown, path); err != nil {
		perr := &PipelineError{Stage: "render", Message: "failed to render report", Cause: err}
		s.clearReport()
		log.WithError(err).Error("report rendering failed")
		s.recordRun(ctx, log, run, db.RunStatusRenderFailed, perr, start)
		return out, perr
	}

	out.ReportPath = path
	s.mu.Lock()
	s.reportPath = path
	s.mu.Unlock()

	if deps.Mirror != nil {
		if url, err := deps.Mirror.Mirror(ctx, s.id, path); err != nil {
			log.WithError(err).Warn("report mirror failed")
		} else {
			out.RemoteURL = url
		}
	}

	run.ReportBytes = len(gen.Markdown)
	s.recordRun(ctx, log, run, db.RunStatusCompleted, nil, start)
	log.WithField("elapsed", time.Since(start).String()).Info("report published")
	return out, nil
}

// clearReport drops the published report once a later run produced text that
// the file no longer matches.
func (s *Session) clearReport() {
	s.mu.Lock()
	s.reportPath = ""
	s.mu.Unlock()
}

// extractBoth reads the two documents concurrently. Extraction never fails, so
// the group only waits.
func (s *Session) extractBoth(resumePath, jobPath string) (resume, job extraction.Result) {
	var g errgroup.Group
	g.Go(func() error {
		resume = s.ctrl.deps.Extractor.Extract(resumePath)
		return nil
	})
	g.Go(func() error {
		job = s.ctrl.deps.Extractor.Extract(jobPath)
		return nil
	})
	_ = g.Wait()
	return resume, job
}

func (s *Session) recordRun(ctx context.Context, log *logrus.Entry, run db.Run, status string, cause error, start time.Time) {
	if s.ctrl.deps.Runs == nil {
		return
	}
	run.Status = status
	run.DurationMs = time.Since(start).Milliseconds()
	if cause != nil {
		msg := cause.Error()
		run.ErrorMessage = &msg
	}
	if err := s.ctrl.deps.Runs.RecordRun(ctx, run); err != nil {
		log.WithError(err).Warn("failed to record run")
	}
}

// Package session implements the license-gated workflow: a session starts
// LOCKED, a granted login unlocks it for the rest of the process lifetime, and
// an unlocked session turns a resume and job description into a strategy
// report and its PDF.
package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/career-architect/internal/db"
	"github.com/jonathan/career-architect/internal/extraction"
	"github.com/jonathan/career-architect/internal/licensing"
	"github.com/jonathan/career-architect/internal/logging"
	"github.com/jonathan/career-architect/internal/report"
)

// Verifier checks a license key
type Verifier interface {
	Verify(ctx context.Context, key string) licensing.Decision
}

// Extractor reads an uploaded document
type Extractor interface {
	Extract(path string) extraction.Result
}

// Generator produces the markdown report
type Generator interface {
	Generate(ctx context.Context, resume, jobDescription string) report.Result
}

// Renderer publishes markdown as a PDF at path
type Renderer interface {
	RenderFile(markdown, path string) error
}

// ReportPaths resolves the fixed report location for a session
type ReportPaths interface {
	ReportPath(sessionID string) (string, error)
}

// Mirror copies a published report somewhere else
type Mirror interface {
	Mirror(ctx context.Context, sessionID, localPath string) (string, error)
}

// RunRecorder stores run history
type RunRecorder interface {
	RecordRun(ctx context.Context, run db.Run) error
}

// Deps are the collaborators shared by every session. Mirror, Runs and Logger
// are optional.
type Deps struct {
	Verifier  Verifier
	Extractor Extractor
	Generator Generator
	Renderer  Renderer
	Reports   ReportPaths
	Mirror    Mirror
	Runs      RunRecorder
	Logger    *logrus.Logger
}

// Controller wires sessions to their collaborators
type Controller struct {
	deps Deps
	log  *logrus.Logger
}

// NewController validates deps and returns a Controller
func NewController(deps Deps) (*Controller, error) {
	switch {
	case deps.Verifier == nil:
		return nil, fmt.Errorf("verifier is required")
	case deps.Extractor == nil:
		return nil, fmt.Errorf("extractor is required")
	case deps.Generator == nil:
		return nil, fmt.Errorf("generator is required")
	case deps.Renderer == nil:
		return nil, fmt.Errorf("renderer is required")
	case deps.Reports == nil:
		return nil, fmt.Errorf("report paths are required")
	}

	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{deps: deps, log: log}, nil
}

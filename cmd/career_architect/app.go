package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/career-architect/internal/config"
	"github.com/jonathan/career-architect/internal/db"
	"github.com/jonathan/career-architect/internal/extraction"
	"github.com/jonathan/career-architect/internal/licensing"
	"github.com/jonathan/career-architect/internal/llm"
	"github.com/jonathan/career-architect/internal/rendering"
	"github.com/jonathan/career-architect/internal/report"
	"github.com/jonathan/career-architect/internal/session"
	"github.com/jonathan/career-architect/internal/storage"
)

// app holds the wired pipeline and whatever it needs closed afterwards
type app struct {
	ctrl   *session.Controller
	client llm.Client
	db     *db.DB
}

// newVerifier builds the license verifier from configuration
func newVerifier(cfg *config.Config, log *logrus.Logger) *licensing.Verifier {
	return licensing.NewVerifier(cfg.Licensing(), licensing.WithLogger(log))
}

// newApp wires the session controller. reportDir overrides cfg.ReportDir when set.
// The object store mirror and the run history are optional and best-effort.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger, reportDir string) (*app, error) {
	if reportDir == "" {
		reportDir = cfg.ReportDir
	}
	store, err := storage.NewLocalStore(reportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare report directory: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLM(), cfg.APIKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	a := &app{client: client}
	deps := session.Deps{
		Verifier:  newVerifier(cfg, log),
		Extractor: extraction.New(),
		Generator: report.NewGenerator(client, log),
		Renderer:  rendering.NewRenderer(),
		Reports:   store,
		Logger:    log,
	}

	if cfg.MinioEnabled() {
		mirror, err := storage.NewMinioMirror(ctx, cfg.Minio())
		if err != nil {
			log.WithError(err).Warn("object store unavailable, reports stay local")
		} else {
			deps.Mirror = mirror
		}
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("database unavailable, run history disabled")
		} else if err := database.EnsureSchema(ctx); err != nil {
			log.WithError(err).Warn("failed to prepare run history schema, run history disabled")
			database.Close()
		} else {
			a.db = database
			deps.Runs = database
		}
	}

	ctrl, err := session.NewController(deps)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ctrl = ctrl
	return a, nil
}

// Close releases the LLM client and the database pool
func (a *app) Close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Package report builds the BLUF strategy prompt and asks the model for the report.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/career-architect/internal/llm"
	"github.com/jonathan/career-architect/internal/logging"
	"github.com/jonathan/career-architect/internal/prompts"
	"github.com/sirupsen/logrus"
)

const (
	promptFile = "strategy.json"
	promptKey  = "executive-strategy"
)

// Status values the prompt allows the model to choose from.
var Statuses = []string{"STRONG MATCH", "POSSIBLE MATCH", "WEAK MATCH"}

// Result is the outcome of one generation. When Err is set, Markdown carries the
// error text that is shown in place of the report.
type Result struct {
	Markdown string
	Model    string
	Elapsed  time.Duration
	Err      error
}

// Failed reports whether generation failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Generator produces strategy reports.
type Generator struct {
	client llm.Client
	tier   llm.ModelTier
	log    *logrus.Logger
}

// NewGenerator creates a generator backed by client. A nil logger discards output.
func NewGenerator(client llm.Client, log *logrus.Logger) *Generator {
	if log == nil {
		log = logging.Discard()
	}
	return &Generator{client: client, tier: llm.TierAdvanced, log: log}
}

// BuildPrompt embeds both documents verbatim into the fixed strategy template.
func BuildPrompt(resume, jobDescription string) string {
	template := prompts.MustGet(promptFile, promptKey)
	return prompts.Format(template, map[string]string{
		"Resume":         resume,
		"JobDescription": jobDescription,
	})
}

// Generate makes a single model call. It never returns an error directly; failures
// are reported through Result.
func (g *Generator) Generate(ctx context.Context, resume, jobDescription string) Result {
	start := time.Now()
	model := g.client.GetModel(g.tier)

	text, err := g.client.GenerateContent(ctx, BuildPrompt(resume, jobDescription), g.tier)
	elapsed := time.Since(start)
	entry := g.log.WithFields(logrus.Fields{"model": model, "elapsed": elapsed.String()})

	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		entry.WithError(err).Warn("report generation failed")
		return Result{Markdown: fmt.Sprintf("AI Error: %v", err), Model: model, Elapsed: elapsed, Err: err}
	}

	entry.Info("report generated")
	return Result{Markdown: llm.StripCodeFence(text), Model: model, Elapsed: elapsed}
}

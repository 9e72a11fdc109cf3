// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-architect/internal/licensing"
	"github.com/jonathan/career-architect/internal/session"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxPreviewLines is how much of the report the outcome box shows
	maxPreviewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or pads line to the inner box width, counting runes
func pad(line string) string {
	width := boxWidth - 4
	if utf8.RuneCountInString(line) > width {
		runes := []rune(line)
		line = string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-utf8.RuneCountInString(line))
}

// PrintDecision outputs the license decision. The key itself is never printed.
func (p *Printer) PrintDecision(d licensing.Decision, keyFingerprint string) {
	var sb strings.Builder
	status := "DENIED"
	if d.Granted {
		status = "GRANTED"
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	sb.WriteString(fmt.Sprintf("Outcome:  %s\n", d.Outcome))
	sb.WriteString(fmt.Sprintf("Reason:   %s\n", d.Reason))
	sb.WriteString(fmt.Sprintf("Key:      %s", keyFingerprint))
	if d.ServiceFailure() {
		sb.WriteString("\n\nThe licensing service could not be reached.")
	}

	p.printBox("LICENSE", sb.String())
}

// PrintOutcome outputs a summary of one pipeline run with a preview of the report.
func (p *Printer) PrintOutcome(out session.Outcome) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:      %s\n", out.RunID))
	if out.Model != "" {
		sb.WriteString(fmt.Sprintf("Model:    %s\n", out.Model))
	}
	switch {
	case out.GenerationFailed:
		sb.WriteString("Status:   generation failed\n")
	case out.ReportPath == "":
		sb.WriteString("Status:   not published\n")
	default:
		sb.WriteString("Status:   published\n")
		sb.WriteString(fmt.Sprintf("PDF:      %s\n", out.ReportPath))
	}
	if out.RemoteURL != "" {
		sb.WriteString(fmt.Sprintf("Mirror:   %s\n", out.RemoteURL))
	}
	if out.ExtractionFailed {
		sb.WriteString("Warning:  a document could not be read\n")
	}

	lines := strings.Split(strings.TrimSpace(out.Report), "\n")
	sb.WriteString("\n")
	count := min(len(lines), maxPreviewLines)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i] + "\n")
	}
	if len(lines) > maxPreviewLines {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-maxPreviewLines))
	}

	p.printBox("STRATEGY REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

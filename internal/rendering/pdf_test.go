package rendering

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-architect/internal/extraction"
)

const sampleReport = `# BLUF Verdict

**Status:** POSSIBLE MATCH

## Critical Gaps

- Stakeholder management
- ⚠️ Budget ownership

---

` + "```\nscore = 72\n```\n"

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestRender_ProducesPDF(t *testing.T) {
	r := NewRenderer(WithClock(fixedClock))

	var buf bytes.Buffer
	require.NoError(t, r.Render(sampleReport, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestRender_EmptyMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer().Render("", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRender_Uncompressed(t *testing.T) {
	r := NewRenderer(WithCompression(false), WithClock(fixedClock), WithTitle("Strategy"))

	var buf bytes.Buffer
	require.NoError(t, r.Render("# Hello Report\n\nBody text", &buf))
	assert.Contains(t, buf.String(), "Hello Report")
	assert.Contains(t, buf.String(), "Body text")
}

func TestRenderFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "career_strategy.pdf")
	r := NewRenderer(WithCompression(false), WithClock(fixedClock))

	require.NoError(t, r.RenderFile(sampleReport, path))
	require.FileExists(t, path)

	res := extraction.New().Extract(path)
	require.False(t, res.Failed(), "extract: %v", res.Err)
	assert.Contains(t, res.Text, "BLUF Verdict")
	assert.Contains(t, res.Text, "Critical Gaps")
	assert.Contains(t, res.Text, "Stakeholder management")
	assert.Contains(t, res.Text, "score = 72")
	assert.Equal(t, 1, res.Pages)
}

func TestRenderFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "career_strategy.pdf")
	r := NewRenderer(WithCompression(false), WithClock(fixedClock))

	require.NoError(t, r.RenderFile("# First Report", path))
	require.NoError(t, r.RenderFile("# Second Report", path))

	res := extraction.New().Extract(path)
	require.False(t, res.Failed())
	assert.Contains(t, res.Text, "Second Report")
	assert.NotContains(t, res.Text, "First Report")
}

func TestRenderFile_LongReportPaginates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.pdf")
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("- item line\n")
	}

	require.NoError(t, NewRenderer(WithCompression(false)).RenderFile(sb.String(), path))
	res := extraction.New().Extract(path)
	require.False(t, res.Failed())
	assert.Greater(t, res.Pages, 1)
}

func TestRenderFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "career_strategy.pdf")
	err := NewRenderer().RenderFile("# Report", path)
	require.Error(t, err)

	var renderErr *RenderError
	assert.True(t, errors.As(err, &renderErr))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderError(t *testing.T) {
	cause := errors.New("disk full")
	err := &RenderError{Message: "failed to write PDF", Cause: cause}
	assert.Equal(t, "render error: failed to write PDF: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &RenderError{Message: "bad"}
	assert.Equal(t, "render error: bad", bare.Error())
}

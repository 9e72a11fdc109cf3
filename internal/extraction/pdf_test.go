package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixturePDF writes an uncompressed PDF with one page per entry in pages.
func writeFixturePDF(t *testing.T, pages ...string) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(100, 10, text)
	}

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func TestExtract_NoFile(t *testing.T) {
	res := New().Extract("")
	assert.False(t, res.Failed())
	assert.Empty(t, res.Text)
	assert.Equal(t, 0, res.Pages)

	res = New().Extract("   ")
	assert.False(t, res.Failed())
	assert.Empty(t, res.Text)
}

func TestExtract_MissingPath(t *testing.T) {
	res := New().Extract(filepath.Join(t.TempDir(), "does-not-exist.pdf"))

	require.True(t, res.Failed())
	assert.Contains(t, res.Text, "Error reading file")
	assert.True(t, errors.Is(res.Err, os.ErrNotExist))
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is plain text, not a PDF"), 0o644))

	var res Result
	assert.NotPanics(t, func() {
		res = New().Extract(path)
	})

	require.True(t, res.Failed())
	assert.NotEmpty(t, res.Text)
	assert.Contains(t, res.Text, "Error reading file")

	var extractErr *ExtractError
	require.ErrorAs(t, res.Err, &extractErr)
	assert.Equal(t, path, extractErr.Path)
}

func TestExtract_TruncatedPDF(t *testing.T) {
	good := writeFixturePDF(t, "Hello")
	data, err := os.ReadFile(good)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "truncated.pdf")
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o644))

	var res Result
	assert.NotPanics(t, func() {
		res = New().Extract(path)
	})
	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.Text)
}

func TestExtract_ValidPDF(t *testing.T) {
	path := writeFixturePDF(t, "Hello Resume", "Second Page")

	res := New().Extract(path)
	require.False(t, res.Failed(), res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Hello Resume")
	assert.Contains(t, res.Text, "Second Page")
	assert.True(t, len(res.Text) > 0 && res.Text[len(res.Text)-1] == '\n', "each page ends with a newline")
}

func TestExtract_KeepsWordSpaces(t *testing.T) {
	path := writeFixturePDF(t, "Chief Technology Officer", "Jane Doe VP Engineering")

	res := New().Extract(path)
	require.False(t, res.Failed(), res.Text)
	assert.Equal(t, "Chief Technology Officer\nJane Doe VP Engineering\n", res.Text)
}

func TestExtract_LinesAndRuns(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(20, 10, "Jane")
	doc.Cell(20, 10, "Doe")
	doc.Ln(10)
	doc.Cell(100, 10, "VP Engineering")

	path := filepath.Join(t.TempDir(), "runs.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))

	res := New().Extract(path)
	require.False(t, res.Failed(), res.Text)
	assert.Equal(t, "Jane Doe\nVP Engineering\n", res.Text)
}

// writeRawPDF writes a single-page PDF whose content stream is content.
func writeRawPDF(t *testing.T, content string) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "raw.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtract_TextOperators(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "TJ gaps become spaces",
			content: "BT /F1 12 Tf 72 700 Td [(Chief) -300 (Tech) 20 (nology)] TJ ET",
			want:    "Chief Technology",
		},
		{
			name:    "next line operators",
			content: "BT /F1 12 Tf 14 TL 72 700 Td (Officer) Tj T* (Board) Tj (Member) ' ET",
			want:    "Officer\nBoard\nMember",
		},
		{
			name:    "separate text objects on one baseline",
			content: "BT /F1 12 Tf 72 700 Td (Jane) Tj ET BT /F1 12 Tf 120 700 Td (Doe) Tj ET",
			want:    "Jane Doe",
		},
		{
			name:    "text matrix moves to a new line",
			content: "BT /F1 12 Tf 1 0 0 1 72 700 Tm (Top) Tj 1 0 0 1 72 650 Tm (Bottom) Tj ET",
			want:    "Top\nBottom",
		},
		{
			name:    "escaped parentheses",
			content: "BT /F1 12 Tf 72 700 Td (Score \\(91\\)) Tj ET",
			want:    "Score (91)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New().Extract(writeRawPDF(t, tt.content))
			require.False(t, res.Failed(), res.Text)
			assert.Equal(t, 1, res.Pages)
			assert.Equal(t, tt.want+"\n", res.Text)
		})
	}
}

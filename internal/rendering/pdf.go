package rendering

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/career-architect/internal/storage"
)

const (
	pageMargin   = 18.0
	indentStep   = 6.0
	bodySize     = 11.0
	bodyLeading  = 5.5
	codeSize     = 9.0
	codeLeading  = 4.5
	defaultTitle = "Career Strategy Report"
)

var headingSizes = map[int]float64{1: 18, 2: 14, 3: 12}

// Renderer lays out markdown reports as A4 PDF documents using core fonts
type Renderer struct {
	title    string
	compress bool
	now      func() time.Time
}

// Option configures a Renderer
type Option func(*Renderer)

// WithTitle sets the document title stored in the PDF metadata
func WithTitle(title string) Option {
	return func(r *Renderer) { r.title = title }
}

// WithCompression toggles stream compression. Uncompressed output is easier
// to inspect in tests.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer creates a Renderer with compression on
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{title: defaultTitle, compress: true, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the PDF for markdown to w
func (r *Renderer) Render(markdown string, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(r.title, true)
	pdf.SetCreator("career-architect", true)
	pdf.SetCreationDate(r.now())
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, b := range ParseMarkdown(markdown) {
		layoutBlock(pdf, tr, b)
		if pdf.Err() {
			return &RenderError{Message: "failed to lay out report", Cause: pdf.Error()}
		}
	}

	if err := pdf.Output(w); err != nil {
		return &RenderError{Message: "failed to write PDF", Cause: err}
	}
	return nil
}

// RenderFile publishes the PDF for markdown at path. The previous file at path
// survives any failure.
func (r *Renderer) RenderFile(markdown, path string) error {
	err := storage.WriteFileAtomic(path, func(w io.Writer) error {
		return r.Render(markdown, w)
	})
	if err == nil {
		return nil
	}
	if _, ok := err.(*RenderError); ok {
		return err
	}
	return &RenderError{Message: "failed to publish report", Cause: err}
}

func layoutBlock(pdf *fpdf.Fpdf, tr func(string) string, b Block) {
	left, _, _, _ := pdf.GetMargins()
	x := left + float64(b.Indent)*indentStep

	pdf.SetTextColor(0, 0, 0)
	switch b.Kind {
	case BlockHeading:
		size, ok := headingSizes[b.Level]
		if !ok {
			size = bodySize
		}
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", size)
		pdf.MultiCell(0, size*0.5, tr(cleanText(b.Text)), "", "L", false)
		pdf.Ln(1.5)

	case BlockParagraph:
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetX(x)
		pdf.MultiCell(0, bodyLeading, tr(cleanText(b.Text)), "", "L", false)
		pdf.Ln(1.5)

	case BlockListItem:
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetX(x)
		pdf.CellFormat(indentStep, bodyLeading, tr(b.Marker), "", 0, "L", false, 0, "")
		pdf.MultiCell(0, bodyLeading, tr(cleanText(b.Text)), "", "L", false)
		pdf.Ln(0.5)

	case BlockQuote:
		pdf.SetFont("Helvetica", "I", bodySize)
		pdf.SetTextColor(90, 90, 90)
		pdf.SetX(x + indentStep)
		pdf.MultiCell(0, bodyLeading, tr(cleanText(b.Text)), "", "L", false)
		pdf.Ln(1.5)

	case BlockCode:
		pdf.SetFont("Courier", "", codeSize)
		pdf.SetFillColor(242, 242, 242)
		pdf.SetX(x)
		pdf.MultiCell(0, codeLeading, tr(cleanCode(b.Text)), "", "L", true)
		pdf.Ln(1.5)

	case BlockRule:
		pageW, _ := pdf.GetPageSize()
		_, _, right, _ := pdf.GetMargins()
		y := pdf.GetY() + 2
		pdf.SetDrawColor(180, 180, 180)
		pdf.Line(left, y, pageW-right, y)
		pdf.Ln(5)
	}
}

// Package extraction turns uploaded PDF documents into plain text.
//
// Extraction never fails past its own boundary: a document that cannot be read
// produces a Result whose Text describes the problem, so the caller can decide
// whether that text still flows into the next stage.
package extraction

import (
	"fmt"
	"math"
	"os"
	"strings"

	rpdf "rsc.io/pdf"
)

// Result is the outcome of extracting a single document.
type Result struct {
	Text  string // page text joined with newlines, or the failure description
	Pages int    // number of pages read
	Err   error  // non-nil when Text is a failure description
}

// Failed reports whether extraction failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Extractor reads PDF files from disk.
type Extractor struct{}

// New returns a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads the PDF at path. An empty path means nothing was uploaded and
// yields an empty, successful Result.
func (e *Extractor) Extract(path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{}
	}

	text, pages, err := readPDF(path)
	if err != nil {
		return Result{Text: fmt.Sprintf("Error reading file: %v", err), Err: err}
	}
	return Result{Text: text, Pages: pages}
}

// readPDF does the actual work. rsc.io/pdf panics on several malformed inputs,
// so panics are converted into errors here.
func readPDF(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = &ExtractError{Path: path, Message: "malformed document", Cause: fmt.Errorf("%v", r)}
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", 0, &ExtractError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", 0, &ExtractError{Path: path, Message: "failed to stat file", Cause: err}
	}

	doc, err := rpdf.NewReader(f, info.Size())
	if err != nil {
		return "", 0, &ExtractError{Path: path, Message: "not a readable PDF", Cause: err}
	}

	var sb strings.Builder
	n := doc.NumPage()
	for i := 1; i <= n; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		sb.WriteString(pageText(page))
		sb.WriteString("\n")
	}

	return sb.String(), n, nil
}

// TJ adjustments below this many thousandths of an em read as a word gap
const tjSpaceThreshold = -250

// pageText walks the page content stream and rebuilds its text from the shown
// strings. A move to another baseline starts a new line; a run repositioned on
// the same baseline is separated by a space unless one side already has one.
func pageText(page rpdf.Page) string {
	w := &textWriter{page: page, lastY: math.NaN()}
	contents := page.V.Key("Contents")
	switch contents.Kind() {
	case rpdf.Array:
		for i := 0; i < contents.Len(); i++ {
			if part := contents.Index(i); part.Kind() == rpdf.Stream {
				w.interpret(part)
			}
		}
	case rpdf.Stream:
		w.interpret(contents)
	}
	return strings.TrimRight(w.sb.String(), " \n")
}

type textWriter struct {
	page rpdf.Page
	sb   strings.Builder

	enc      rpdf.TextEncoding
	fontSize float64
	leading  float64
	x, y     float64 // start of the current text line

	lastY     float64 // baseline of the last shown run
	moved     bool    // repositioned since the last shown run
	lastSpace bool
}

func (w *textWriter) interpret(strm rpdf.Value) {
	rpdf.Interpret(strm, func(stk *rpdf.Stack, op string) {
		n := stk.Len()
		args := make([]rpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "BT":
			w.x, w.y = 0, 0
			w.moved = true
		case "Tf":
			if n == 2 {
				w.enc = w.page.Font(args[0].Name()).Encoder()
				w.fontSize = args[1].Float64()
			}
		case "TL":
			if n == 1 {
				w.leading = args[0].Float64()
			}
		case "Td", "TD":
			if n == 2 {
				w.x += args[0].Float64()
				w.y += args[1].Float64()
				if op == "TD" {
					w.leading = -args[1].Float64()
				}
				w.moved = true
			}
		case "Tm":
			if n == 6 {
				w.x, w.y = args[4].Float64(), args[5].Float64()
				w.moved = true
			}
		case "T*":
			w.nextLine()
		case "Tj":
			if n == 1 {
				w.show(args[0].RawString())
			}
		case "'":
			if n == 1 {
				w.nextLine()
				w.show(args[0].RawString())
			}
		case "\"":
			if n == 3 {
				w.nextLine()
				w.show(args[2].RawString())
			}
		case "TJ":
			if n == 1 {
				w.showArray(args[0])
			}
		}
	})
}

func (w *textWriter) nextLine() {
	w.y -= w.leading
	if w.leading == 0 {
		// No leading set: still a distinct line
		w.y -= math.Max(w.fontSize, 1)
	}
	w.moved = true
}

func (w *textWriter) show(raw string) {
	text := raw
	if w.enc != nil {
		text = w.enc.Decode(raw)
	}
	if text == "" {
		return
	}

	if w.sb.Len() > 0 {
		tolerance := math.Max(w.fontSize*0.4, 1)
		switch {
		case !math.IsNaN(w.lastY) && math.Abs(w.y-w.lastY) > tolerance:
			w.trimTrailingSpace()
			w.sb.WriteString("\n")
		case w.moved && !w.lastSpace && !strings.HasPrefix(text, " "):
			w.sb.WriteString(" ")
		}
	}

	w.sb.WriteString(text)
	w.lastY = w.y
	w.moved = false
	w.lastSpace = strings.HasSuffix(text, " ")
}

func (w *textWriter) showArray(arr rpdf.Value) {
	for i := 0; i < arr.Len(); i++ {
		v := arr.Index(i)
		switch v.Kind() {
		case rpdf.String:
			w.show(v.RawString())
		case rpdf.Integer, rpdf.Real:
			if v.Float64() < tjSpaceThreshold && w.sb.Len() > 0 && !w.lastSpace {
				w.sb.WriteString(" ")
				w.lastSpace = true
			}
		}
	}
}

func (w *textWriter) trimTrailingSpace() {
	s := w.sb.String()
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) != len(s) {
		w.sb.Reset()
		w.sb.WriteString(trimmed)
	}
}

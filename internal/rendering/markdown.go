package rendering

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind identifies how a block is laid out on the page.
type BlockKind int

// Block kinds
const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockListItem
	BlockRule
	BlockCode
	BlockQuote
)

// Block is one laid-out unit of the document.
type Block struct {
	Kind   BlockKind
	Level  int    // heading level
	Indent int    // list nesting depth
	Marker string // list marker, e.g. "•" or "2."
	Text   string
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ParseMarkdown flattens markdown into the block sequence the PDF writer lays out.
// Inline formatting is reduced to its text.
func ParseMarkdown(src string) []Block {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	c := &collector{source: source}
	c.children(doc, 0, false)
	return c.blocks
}

type collector struct {
	source []byte
	blocks []Block
}

func (c *collector) add(b Block) {
	if b.Kind != BlockRule && strings.TrimSpace(b.Text) == "" {
		return
	}
	c.blocks = append(c.blocks, b)
}

func (c *collector) children(n ast.Node, indent int, quoted bool) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.block(child, indent, quoted)
	}
}

func (c *collector) block(n ast.Node, indent int, quoted bool) {
	switch node := n.(type) {
	case *ast.Heading:
		c.add(Block{Kind: BlockHeading, Level: node.Level, Text: c.inline(node)})
	case *ast.Paragraph, *ast.TextBlock:
		kind := BlockParagraph
		if quoted {
			kind = BlockQuote
		}
		c.add(Block{Kind: kind, Indent: indent, Text: c.inline(node)})
	case *ast.List:
		c.list(node, indent, quoted)
	case *ast.ThematicBreak:
		c.add(Block{Kind: BlockRule})
	case *ast.FencedCodeBlock:
		c.add(Block{Kind: BlockCode, Indent: indent, Text: c.lines(node)})
	case *ast.CodeBlock:
		c.add(Block{Kind: BlockCode, Indent: indent, Text: c.lines(node)})
	case *ast.Blockquote:
		c.children(node, indent, true)
	case *east.Table:
		c.table(node, indent)
	case *ast.HTMLBlock:
		// raw HTML is not rendered
	default:
		c.children(node, indent, quoted)
	}
}

func (c *collector) list(list *ast.List, indent int, quoted bool) {
	number := list.Start
	if number == 0 {
		number = 1
	}

	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + "."
			number++
		}

		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch child.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if first {
					c.add(Block{Kind: BlockListItem, Indent: indent, Marker: marker, Text: c.inline(child)})
					first = false
					continue
				}
				c.add(Block{Kind: BlockParagraph, Indent: indent + 1, Text: c.inline(child)})
			default:
				if first {
					// item that opens with a nested block still gets its marker
					c.add(Block{Kind: BlockListItem, Indent: indent, Marker: marker, Text: " "})
					first = false
				}
				c.block(child, indent+1, quoted)
			}
		}
	}
}

func (c *collector) table(table *east.Table, indent int) {
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(c.inline(cell)))
		}
		c.add(Block{Kind: BlockParagraph, Indent: indent, Text: strings.Join(cells, " | ")})
	}
}

func (c *collector) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(c.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// inline concatenates the text under n.
func (c *collector) inline(n ast.Node) string {
	var sb strings.Builder
	c.writeInline(&sb, n)
	return strings.TrimSpace(sb.String())
}

func (c *collector) writeInline(sb *strings.Builder, n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(c.source))
			if node.HardLineBreak() {
				sb.WriteString("\n")
			} else if node.SoftLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.AutoLink:
			sb.Write(node.URL(c.source))
		case *east.TaskCheckBox:
			if node.IsChecked {
				sb.WriteString("[x] ")
			} else {
				sb.WriteString("[ ] ")
			}
		case *ast.RawHTML:
			// dropped
		default:
			c.writeInline(sb, child)
		}
	}
}

package bookbind

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/jung-kurt/gofpdf"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// goldmarkHTMLEngine is the in-process fallback for the HTML target: pure
// markup parsing with a diagram-fence extension, wrapped in the embedded
// stylesheet. No external process, highest availability.
type goldmarkHTMLEngine struct {
	md goldmark.Markdown
}

func newGoldmarkHTMLEngine() *goldmarkHTMLEngine {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			mermaidExtension{}, // ```mermaid fences
			highlighting.NewHighlighting(
				highlighting.WithStyle("tango"), // inline styles, self-contained output
				highlighting.WithFormatOptions(
					chromahtml.TabWidth(4),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // heading anchors
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &goldmarkHTMLEngine{md: md}
}

func (e *goldmarkHTMLEngine) ID() EngineID { return EngineGoldmark }

// Render converts markdown to a standalone HTML document. Supports
// cancellation via goroutine + select since goldmark doesn't take a
// context.
func (e *goldmarkHTMLEngine) Render(ctx context.Context, _ *TempScope, source, targetPath string, opts *StyleOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(source), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: wrapHTMLDocument("Tutorial", headBlock(opts), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return &EngineExecutionError{Engine: e.ID(), Err: fmt.Errorf("%w: %v", ErrNonZeroExit, r.err)}
		}
		if err := writeArtifact(targetPath, []byte(r.html)); err != nil {
			return execError(e.ID(), err, "")
		}
		return nil
	}
}

// goldmarkPDFEngine is the tertiary engine for the PDF target: the parsed
// markdown AST is written directly with a document-writing library.
// Lowest fidelity (plain typography, diagrams kept as their source text),
// no external dependencies at all.
type goldmarkPDFEngine struct {
	md goldmark.Markdown
}

func newGoldmarkPDFEngine() *goldmarkPDFEngine {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	return &goldmarkPDFEngine{md: md}
}

func (e *goldmarkPDFEngine) ID() EngineID { return EngineGoldmark }

func (e *goldmarkPDFEngine) Render(ctx context.Context, _ *TempScope, source, targetPath string, opts *StyleOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- e.writeDocument(source, targetPath, opts)
	}()

	select {
	case <-ctx.Done():
		// The in-process writer always runs to completion; wait for it so
		// the partial artifact is gone before the caller observes the
		// cancellation.
		<-done
		removeArtifact(targetPath)
		return ctx.Err()
	case err := <-done:
		if err != nil {
			removeArtifact(targetPath)
			return &EngineExecutionError{Engine: e.ID(), Err: fmt.Errorf("%w: %v", ErrNonZeroExit, err)}
		}
		return nil
	}
}

// writeDocument parses the markdown and walks the AST into a PDF file.
func (e *goldmarkPDFEngine) writeDocument(source, targetPath string, opts *StyleOptions) error {
	src := []byte(source)
	doc := e.md.Parser().Parse(text.NewReader(src))

	w := newDocWriter(opts)
	w.writeBlocks(doc, src, 0)

	if err := w.pdf.OutputFileAndClose(targetPath); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFWrite, err)
	}
	return nil
}

// Heading font sizes in points by level (1-6).
var headingSizes = [6]float64{20, 16, 14, 12, 11, 11}

// docWriter emits markdown blocks into a gofpdf document.
type docWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string // core fonts are cp1252; translate UTF-8
}

func newDocWriter(opts *StyleOptions) *docWriter {
	orientation := "P"
	if strings.EqualFold(opts.Page.Orientation, OrientationLandscape) {
		orientation = "L"
	}

	size := "A4"
	switch strings.ToLower(opts.Page.Size) {
	case PageSizeLetter:
		size = "Letter"
	case PageSizeLegal:
		size = "Legal"
	}

	pdf := gofpdf.New(orientation, "mm", size, "")
	margin := opts.Page.Margin * 25.4 // inches to mm
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)

	return &docWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// writeBlocks walks the direct children of n, emitting one block each.
func (w *docWriter) writeBlocks(n ast.Node, src []byte, depth int) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			w.heading(node.Level, nodeText(node, src))
		case *ast.Paragraph, *ast.TextBlock:
			w.paragraph(nodeText(node, src), depth)
		case *ast.FencedCodeBlock:
			w.codeBlock(rawLines(node, src))
		case *ast.CodeBlock:
			w.codeBlock(rawLines(node, src))
		case *ast.ThematicBreak:
			w.rule()
		case *ast.Blockquote:
			w.writeBlocks(node, src, depth+1)
		case *ast.List:
			w.list(node, src, depth)
		default:
			if txt := nodeText(node, src); txt != "" {
				w.paragraph(txt, depth)
			}
		}
	}
}

func (w *docWriter) heading(level int, txt string) {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	w.pdf.Ln(3)
	w.pdf.SetFont("Helvetica", "B", headingSizes[level-1])
	w.pdf.MultiCell(0, headingSizes[level-1]*0.5, w.tr(txt), "", "L", false)
	w.pdf.SetFont("Helvetica", "", 11)
	w.pdf.Ln(2)
}

func (w *docWriter) paragraph(txt string, depth int) {
	if txt == "" {
		return
	}
	indent := float64(depth) * 5
	if indent > 0 {
		w.pdf.SetLeftMargin(w.leftMargin() + indent)
	}
	w.pdf.MultiCell(0, 5.5, w.tr(txt), "", "L", false)
	if indent > 0 {
		w.pdf.SetLeftMargin(w.leftMargin() - indent)
	}
	w.pdf.Ln(2)
}

func (w *docWriter) codeBlock(code string) {
	w.pdf.SetFont("Courier", "", 9)
	w.pdf.SetFillColor(246, 248, 250)
	w.pdf.MultiCell(0, 4.5, w.tr(strings.TrimRight(code, "\n")), "", "L", true)
	w.pdf.SetFont("Helvetica", "", 11)
	w.pdf.Ln(2)
}

func (w *docWriter) rule() {
	w.pdf.Ln(2)
	x := w.leftMargin()
	pageWidth, _ := w.pdf.GetPageSize()
	_, _, rightMargin, _ := w.pdf.GetMargins()
	y := w.pdf.GetY()
	w.pdf.SetDrawColor(225, 228, 232)
	w.pdf.Line(x, y, pageWidth-rightMargin, y)
	w.pdf.Ln(4)
}

// list emits items with bullet or number markers, recursing into nested
// lists one indent level deeper.
func (w *docWriter) list(node *ast.List, src []byte, depth int) {
	counter := node.Start
	if counter == 0 {
		counter = 1
	}
	for li := node.FirstChild(); li != nil; li = li.NextSibling() {
		marker := "- "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", counter)
			counter++
		}

		var inline []string
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if _, nested := c.(*ast.List); nested {
				continue
			}
			if txt := nodeText(c, src); txt != "" {
				inline = append(inline, txt)
			}
		}
		w.paragraph(marker+strings.Join(inline, " "), depth)

		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				w.list(nested, src, depth+1)
			}
		}
	}
}

func (w *docWriter) leftMargin() float64 {
	left, _, _, _ := w.pdf.GetMargins()
	return left
}

// nodeText collects the plain text of a node's inline content.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// rawLines returns the verbatim source lines of a block node.
func rawLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}

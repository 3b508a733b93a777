package bookbind

import (
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// mermaidLanguage is the fence info string that marks a diagram block.
const mermaidLanguage = "mermaid"

// kindMermaidBlock is the AST node kind for diagram fences.
var kindMermaidBlock = ast.NewNodeKind("MermaidBlock")

// mermaidBlock is a fenced diagram definition lifted out of the code-block
// path so the highlighter leaves it alone and the renderer can emit the
// container the client-side script looks for.
type mermaidBlock struct {
	ast.BaseBlock
}

func (n *mermaidBlock) Kind() ast.NodeKind { return kindMermaidBlock }

func (n *mermaidBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// mermaidTransformer rewrites ```mermaid fences into mermaidBlock nodes
// at parse time.
type mermaidTransformer struct{}

func (mermaidTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok && string(fcb.Language(source)) == mermaidLanguage {
			fences = append(fences, fcb)
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range fences {
		block := &mermaidBlock{}
		block.SetLines(fcb.Lines())
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, block)
	}
}

// mermaidRenderer emits <div class="mermaid"> containers. The diagram
// definition is HTML-escaped; the script reads it back as text content.
type mermaidRenderer struct{}

func (r mermaidRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindMermaidBlock, r.render)
}

func (mermaidRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<div class="mermaid">`)
	_, _ = w.WriteString("\n")
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.WriteString(html.EscapeString(string(seg.Value(source))))
	}
	return ast.WalkContinue, nil
}

// mermaidExtension wires the transformer and renderer into goldmark.
type mermaidExtension struct{}

func (mermaidExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(util.Prioritized(mermaidTransformer{}, 100)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(mermaidRenderer{}, 100)),
	)
}

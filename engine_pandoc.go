package bookbind

import (
	"context"
	"fmt"
	"strconv"

	"github.com/drennalls/bookbind/internal/execx"
)

// pandocInputFormat enables the markdown extensions the generated
// tutorials rely on, including mermaid diagram fences.
const pandocInputFormat = "markdown+yaml_metadata_block+raw_html+fenced_divs+mermaid"

// pandocPDFEngine is the primary engine for the PDF target: it drives the
// full-featured external compiler directly against raw markdown. Highest
// fidelity, highest chance of missing-dependency failure.
type pandocPDFEngine struct {
	runner execx.Runner
}

func newPandocPDFEngine(runner execx.Runner) *pandocPDFEngine {
	return &pandocPDFEngine{runner: runner}
}

func (e *pandocPDFEngine) ID() EngineID { return EnginePandoc }

// Render compiles markdown straight to a paginated document. The
// stylesheet is materialized as a temp resource and handed to the tool as
// literal input.
func (e *pandocPDFEngine) Render(ctx context.Context, scope *TempScope, source, targetPath string, opts *StyleOptions) error {
	// No tool has run yet; setup failures surface as-is instead of being
	// classified as tool failures.
	md, err := scope.AcquireWith("md", source)
	if err != nil {
		return err
	}
	defer scope.Release(md)

	css, err := scope.AcquireWith("css", documentStylesheet)
	if err != nil {
		return err
	}
	defer scope.Release(css)

	args := []string{
		md.Path,
		"-o", targetPath,
		"--pdf-engine=xelatex",
		"-V", fmt.Sprintf("geometry:margin=%.2fin", opts.Page.Margin),
		"--highlight-style=tango",
		"--standalone",
		"--css", css.Path,
		"--toc",
		"--toc-depth=" + strconv.Itoa(opts.TOCDepth),
		"--number-sections",
		"-V", "colorlinks=true",
		"-f", pandocInputFormat,
		"--mathjax",
		"--embed-resources",
	}

	res, err := e.runner.Run(ctx, "pandoc", args...)
	if err != nil {
		removeArtifact(targetPath)
		return execError(e.ID(), err, res.Stderr)
	}
	return nil
}

// pandocHTMLEngine is the primary engine for the HTML target: the same
// external compiler configured for standalone HTML with the diagram
// script block injected into the document header.
type pandocHTMLEngine struct {
	runner execx.Runner
}

func newPandocHTMLEngine(runner execx.Runner) *pandocHTMLEngine {
	return &pandocHTMLEngine{runner: runner}
}

func (e *pandocHTMLEngine) ID() EngineID { return EnginePandoc }

func (e *pandocHTMLEngine) Render(ctx context.Context, scope *TempScope, source, targetPath string, opts *StyleOptions) error {
	md, err := scope.AcquireWith("md", source)
	if err != nil {
		return err
	}
	defer scope.Release(md)

	head, err := scope.AcquireWith("html", headBlock(opts))
	if err != nil {
		return err
	}
	defer scope.Release(head)

	args := []string{
		md.Path,
		"-o", targetPath,
		"--standalone",
		"-t", "html5",
		"--highlight-style=tango",
		"--toc",
		"--toc-depth=" + strconv.Itoa(opts.TOCDepth),
		"--number-sections",
		"-f", pandocInputFormat,
		"--embed-resources",
		"--mathjax",
		"--css", opts.StylesheetURL,
		"--include-in-header", head.Path,
	}

	res, err := e.runner.Run(ctx, "pandoc", args...)
	if err != nil {
		removeArtifact(targetPath)
		return execError(e.ID(), err, res.Stderr)
	}
	return nil
}

package bookbind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/drennalls/bookbind/internal/execx"
)

// CombinedDocumentName is the base name of the combined document and its
// rendered artifacts inside the run directory.
const CombinedDocumentName = "complete_tutorial"

// Compile-time interface implementation checks. These catch signature
// mismatches between engines and the chain at compile time.
var (
	_ Engine = (*pandocPDFEngine)(nil)
	_ Engine = (*pandocHTMLEngine)(nil)
	_ Engine = (*chromePDFEngine)(nil)
	_ Engine = (*goldmarkHTMLEngine)(nil)
	_ Engine = (*goldmarkPDFEngine)(nil)
)

// Pipeline is the top-level entry point: it assembles fragments into one
// document and drives the per-format engine chains. A Pipeline holds no
// cross-run state; independent runs may use separate Pipelines
// concurrently.
type Pipeline struct {
	cfg       pipelineConfig
	htmlChain *EngineChain
	pdfChain  *EngineChain
	closers   []io.Closer
}

// New creates a Pipeline with default configuration. Use options to
// customize behavior (e.g., WithTimeout, WithLogger, WithRunner).
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: pipelineConfig{timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.cfg.logger == nil {
		p.cfg.logger = discardLogger()
	}
	if p.cfg.runner == nil {
		p.cfg.runner = &execx.ExecRunner{}
	}

	// Chains may be pre-injected by tests.
	if p.htmlChain == nil {
		p.htmlChain = newEngineChain(FormatHTML, p.cfg.timeout, p.cfg.logger,
			newPandocHTMLEngine(p.cfg.runner),
			newGoldmarkHTMLEngine(),
		)
	}
	if p.pdfChain == nil {
		chrome := newChromePDFEngine(p.htmlChain, newRodRenderer())
		p.closers = append(p.closers, chrome)
		p.pdfChain = newEngineChain(FormatPDF, p.cfg.timeout, p.cfg.logger,
			newPandocPDFEngine(p.cfg.runner),
			chrome,
			newGoldmarkPDFEngine(),
		)
	}

	return p
}

// PublishRequest describes one run: which fragments to combine, where the
// artifacts go, and which formats to produce.
type PublishRequest struct {
	Name      string     // run name, becomes the output subdirectory
	Fragments []Fragment // generated chapters/index, encounter order preserved
	OutputDir string     // destination root
	HTML      bool
	PDF       bool
	Style     *StyleOptions // nil = defaults
}

// PublishResult reports what a run produced. The caller owns the
// artifacts, including deleting them.
type PublishResult struct {
	Document     *CombinedDocument
	CombinedPath string            // combined markdown file, "" if nothing was written
	HTML         *ConversionResult // nil if not requested or failed
	PDF          *ConversionResult // nil if not requested or failed
}

// defaultRunName is used when the request leaves Name empty.
const defaultRunName = "tutorial"

// Publish assembles the fragments, writes the combined document under
// <OutputDir>/<Name>/, and renders the requested formats. Per-format
// chain exhaustion is reported via errors.Join of *AggregateFailure
// values; a format that succeeded is still present in the result. An
// empty fragment set is informational, not fatal: nothing is written and
// the result carries an empty document.
//
// Every temp resource acquired during the run is released before Publish
// returns, on success, failure, and cancellation alike.
func (p *Pipeline) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.OutputDir == "" {
		return nil, ErrNoOutputDir
	}
	if !req.HTML && !req.PDF {
		return nil, ErrNoFormats
	}
	opts := req.Style.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = defaultRunName
	}

	doc, err := Assemble(req.Fragments)
	if err != nil {
		return nil, err
	}
	res := &PublishResult{Document: doc}

	if doc.Empty() {
		p.cfg.logger.Info("no fragments to publish", "run", name)
		return res, nil
	}

	dir := filepath.Join(req.OutputDir, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	mdPath := filepath.Join(dir, CombinedDocumentName+".md")
	if err := os.WriteFile(mdPath, []byte(doc.Content), 0o600); err != nil {
		return nil, fmt.Errorf("writing combined document: %w", err)
	}
	res.CombinedPath = mdPath
	p.cfg.logger.Info("combined document written", "path", mdPath, "fragments", len(doc.SourceOrder))

	scope := NewTempScope(p.cfg.logger)
	defer func() {
		if cerr := scope.Close(); cerr != nil {
			p.cfg.logger.Warn("temp scope cleanup", "err", cerr)
		}
	}()

	var errs []error

	if req.HTML {
		conv, err := p.htmlChain.Convert(ctx, scope, doc.Content, filepath.Join(dir, CombinedDocumentName+".html"), opts)
		switch {
		case err == nil:
			res.HTML = conv
		case ctx.Err() != nil:
			return res, ctx.Err()
		default:
			errs = append(errs, err)
		}
	}

	if req.PDF {
		conv, err := p.pdfChain.Convert(ctx, scope, doc.Content, filepath.Join(dir, CombinedDocumentName+".pdf"), opts)
		switch {
		case err == nil:
			res.PDF = conv
		case ctx.Err() != nil:
			return res, ctx.Err()
		default:
			errs = append(errs, err)
		}
	}

	return res, errors.Join(errs...)
}

// Close releases engine resources (headless browser).
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// discardLogger returns a logger that drops everything; the library stays
// silent unless the caller opts in.
func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

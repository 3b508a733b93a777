package bookbind

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// htmlStage produces the HTML intermediate for the two-stage PDF path.
// Satisfied by *EngineChain.
type htmlStage interface {
	Convert(ctx context.Context, scope *TempScope, source, outputPath string, opts *StyleOptions) (*ConversionResult, error)
}

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing
// without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *StyleOptions) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ pdfRenderer = (*rodRenderer)(nil)
	_ htmlStage   = (*EngineChain)(nil)
)

// Page dimensions in inches by page size name.
var paperDimensions = map[string][2]float64{
	PageSizeA4:     {8.27, 11.69},
	PageSizeLetter: {8.5, 11},
	PageSizeLegal:  {8.5, 14},
}

// chromePDFEngine is the secondary engine for the PDF target: it renders
// the HTML intermediate in headless Chrome, waiting a fixed delay so
// client-side diagram scripts can execute. Medium fidelity; depends on
// two toolchains in sequence.
type chromePDFEngine struct {
	html     htmlStage
	renderer pdfRenderer
}

func newChromePDFEngine(html htmlStage, renderer pdfRenderer) *chromePDFEngine {
	return &chromePDFEngine{html: html, renderer: renderer}
}

func (e *chromePDFEngine) ID() EngineID { return EngineChrome }

func (e *chromePDFEngine) Render(ctx context.Context, scope *TempScope, source, targetPath string, opts *StyleOptions) error {
	// Setup failure, not a tool failure; surface it as-is.
	htmlRes, err := scope.Acquire("html")
	if err != nil {
		return err
	}
	defer scope.Release(htmlRes)

	if _, err := e.html.Convert(ctx, scope, source, htmlRes.Path, opts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &EngineExecutionError{
			Engine: e.ID(),
			Err:    fmt.Errorf("%w: HTML stage failed", ErrNonZeroExit),
			Detail: err.Error(),
		}
	}

	pdfBytes, err := e.renderer.RenderFromFile(ctx, htmlRes.Path, opts)
	if err != nil {
		removeArtifact(targetPath)
		return execError(e.ID(), err, "")
	}

	if err := writeArtifact(targetPath, pdfBytes); err != nil {
		return execError(e.ID(), err, "")
	}
	return nil
}

// Close releases browser resources.
func (e *chromePDFEngine) Close() error {
	return e.renderer.Close()
}

// rodRenderer implements pdfRenderer using go-rod. Rod downloads a
// Chromium on first run if no browser binary is configured.
type rodRenderer struct {
	browser    *rod.Browser
	browserBin string // resolved once at construction, never read mid-run
	noSandbox  bool
}

// newRodRenderer creates a rodRenderer. The browser binary override and
// sandbox toggle are captured here so the run itself reads no ambient
// configuration.
func newRodRenderer() *rodRenderer {
	bin := os.Getenv("ROD_BROWSER_BIN")
	return &rodRenderer{
		browserBin: bin,
		noSandbox:  os.Getenv("CI") == "true" || bin != "",
	}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()
	if r.browserBin != "" {
		l = l.Bin(r.browserBin)
	}
	if r.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it
// to PDF. After the page loads it waits opts.ScriptDelay so diagram
// scripts finish drawing before print.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *StyleOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := loadTimeout(ctx)
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Fixed delay for client-side diagram rendering (mermaid).
	if opts.ScriptDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.ScriptDelay):
		}
	}

	reader, err := page.PDF(buildPrintOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// loadTimeout derives the page-load bound from the context deadline,
// falling back to the default attempt timeout.
func loadTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}
	return defaultTimeout
}

// buildPrintOptions constructs print settings from page configuration,
// with a page-number footer.
func buildPrintOptions(opts *StyleOptions) *proto.PagePrintToPDF {
	page := opts.Page
	dims, ok := paperDimensions[strings.ToLower(page.Size)]
	if !ok {
		dims = paperDimensions[PageSizeA4]
	}
	width, height := dims[0], dims[1]
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		width, height = height, width
	}

	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(width),
		PaperHeight:         floatPtr(height),
		MarginTop:           floatPtr(page.Margin),
		MarginBottom:        floatPtr(page.Margin),
		MarginLeft:          floatPtr(page.Margin),
		MarginRight:         floatPtr(page.Margin),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      "<span></span>", // empty header
		FooterTemplate:      pageNumberFooter,
	}
}

// pageNumberFooter renders "page/total" centered in Chrome's native footer.
const pageNumberFooter = `<div style="font-size: 10px; color: #aaa; width: 100%; text-align: center;"><span class="pageNumber"></span>/<span class="totalPages"></span></div>`

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

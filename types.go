package bookbind

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/drennalls/bookbind/internal/execx"
)

// TargetFormat identifies a rendered output format.
type TargetFormat string

// Target format constants.
const (
	FormatHTML TargetFormat = "html"
	FormatPDF  TargetFormat = "pdf"
)

// EngineID identifies one rendering backend.
type EngineID string

// Engine identifiers, in fallback priority order for the PDF target.
const (
	EnginePandoc   EngineID = "pandoc"
	EngineChrome   EngineID = "chrome"
	EngineGoldmark EngineID = "goldmark"
)

// EngineAttempt records the outcome of one engine invocation. The chain
// retains an attempt for every engine tried, not only the last, so failed
// runs stay diagnosable.
type EngineAttempt struct {
	Engine    EngineID
	Succeeded bool
	Detail    string // error detail for failed attempts
}

// ConversionResult describes a successful conversion: where the artifact
// landed, which engine produced it, and every attempt made along the way.
type ConversionResult struct {
	ArtifactPath string
	EngineUsed   EngineID
	Attempts     []EngineAttempt
}

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.79 // ~20mm
)

// PageSettings configures paginated output dimensions.
type PageSettings struct {
	Size        string  // "a4", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeA4, PageSizeLetter, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// TOC depth bounds.
const (
	MinTOCDepth     = 1
	MaxTOCDepth     = 6
	DefaultTOCDepth = 3
)

// DefaultScriptDelay is how long the browser engine waits after page load
// for client-side diagram scripts to finish before printing.
const DefaultScriptDelay = 1 * time.Second

// StyleOptions configures the presentation of rendered output. The same
// options value drives every engine so fallback keeps a consistent look.
type StyleOptions struct {
	StylesheetURL string        // pinned external stylesheet reference
	MermaidURL    string        // diagram-rendering script reference
	TOCDepth      int           // table of contents depth
	ScriptDelay   time.Duration // wait for diagram scripts before printing
	Page          *PageSettings // nil = defaults
}

// DefaultStyleOptions returns style options with documented defaults.
func DefaultStyleOptions() *StyleOptions {
	return &StyleOptions{
		StylesheetURL: DefaultStylesheetURL,
		MermaidURL:    DefaultMermaidURL,
		TOCDepth:      DefaultTOCDepth,
		ScriptDelay:   DefaultScriptDelay,
		Page:          DefaultPageSettings(),
	}
}

// Validate checks that style options are valid.
// Returns nil if s is nil (nil means use defaults).
func (s *StyleOptions) Validate() error {
	if s == nil {
		return nil
	}
	if s.TOCDepth < MinTOCDepth || s.TOCDepth > MaxTOCDepth {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, s.TOCDepth, MinTOCDepth, MaxTOCDepth)
	}
	if s.ScriptDelay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScriptDelay, s.ScriptDelay)
	}
	return s.Page.Validate()
}

// withDefaults fills zero-valued fields with defaults, returning a copy.
func (s *StyleOptions) withDefaults() *StyleOptions {
	if s == nil {
		return DefaultStyleOptions()
	}
	out := *s
	if out.StylesheetURL == "" {
		out.StylesheetURL = DefaultStylesheetURL
	}
	if out.MermaidURL == "" {
		out.MermaidURL = DefaultMermaidURL
	}
	if out.TOCDepth == 0 {
		out.TOCDepth = DefaultTOCDepth
	}
	if out.ScriptDelay == 0 {
		out.ScriptDelay = DefaultScriptDelay
	}
	if out.Page == nil {
		out.Page = DefaultPageSettings()
	}
	return &out
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// pipelineConfig holds internal configuration for Pipeline.
type pipelineConfig struct {
	timeout time.Duration
	logger  *log.Logger
	runner  execx.Runner
}

// defaultTimeout bounds each engine attempt when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-attempt execution timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("bookbind: WithTimeout duration must be positive")
	}
	return func(p *Pipeline) {
		p.cfg.timeout = d
	}
}

// WithLogger sets the structured logger used for progress and resource-leak
// diagnostics. The default logger discards everything.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		p.cfg.logger = l
	}
}

// WithRunner sets the command runner used to invoke external tools.
// Mainly useful for tests; the default runs real subprocesses.
func WithRunner(r execx.Runner) Option {
	return func(p *Pipeline) {
		p.cfg.runner = r
	}
}

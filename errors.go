package bookbind

import "errors"

// Sentinel errors for library operations.
var (
	// Assembly errors.
	ErrDuplicateFragment = errors.New("duplicate fragment name")

	// Engine execution failure kinds. Wrapped by EngineExecutionError so
	// callers can match with errors.Is.
	ErrToolMissing   = errors.New("rendering tool not found")
	ErrNonZeroExit   = errors.New("rendering tool exited with error")
	ErrRenderTimeout = errors.New("rendering tool timed out")

	// Browser rendering errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// In-process conversion errors.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrPDFWrite       = errors.New("PDF document write failed")

	// Validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidTOCDepth    = errors.New("invalid TOC depth")
	ErrInvalidScriptDelay = errors.New("invalid script delay")

	// Pipeline errors.
	ErrNoOutputDir = errors.New("output directory cannot be empty")
	ErrNoFormats   = errors.New("no target format requested")
)

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/drennalls/bookbind"
)

// publishOptions collects flag and config values for one publish run.
type publishOptions struct {
	inputDir   string
	outputDir  string
	name       string
	formats    string
	configName string
	timeout    time.Duration

	stylesheetURL string
	mermaidURL    string
	tocDepth      int
	pageSize      string
	orientation   string
	margin        float64
}

// registerPublishFlags binds publish flags to the options struct.
func registerPublishFlags(fs *pflag.FlagSet, o *publishOptions) {
	fs.StringVarP(&o.inputDir, "input", "i", "", "directory holding generated chapter fragments")
	fs.StringVarP(&o.outputDir, "out", "o", "", "destination root for rendered artifacts")
	fs.StringVarP(&o.name, "name", "n", "", "run name (output subdirectory, default: input directory name)")
	fs.StringVarP(&o.formats, "format", "f", "", "target formats: html, pdf, or both (default: both)")
	fs.StringVarP(&o.configName, "config", "c", "", "config file name or path")
	fs.DurationVar(&o.timeout, "timeout", 0, "per-engine attempt timeout (default: 2m)")

	fs.StringVar(&o.stylesheetURL, "stylesheet", "", "pinned external stylesheet URL")
	fs.StringVar(&o.mermaidURL, "mermaid", "", "diagram-rendering script URL")
	fs.IntVar(&o.tocDepth, "toc-depth", 0, "table of contents depth (1-6)")
	fs.StringVar(&o.pageSize, "page-size", "", "page size: a4, letter, or legal")
	fs.StringVar(&o.orientation, "orientation", "", "page orientation: portrait or landscape")
	fs.Float64Var(&o.margin, "margin", 0, "page margin in inches")
}

func newPublishCmd() *cobra.Command {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Combine chapter fragments and render them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts)
		},
	}

	registerPublishFlags(cmd.Flags(), opts)
	return cmd
}

// runPublish merges config and flags, discovers fragments, and drives the
// pipeline.
func runPublish(cmd *cobra.Command, opts *publishOptions) error {
	logger := loggerFromContext(cmd.Context())

	cfg := DefaultConfig()
	if opts.configName != "" {
		loaded, err := LoadConfig(opts.configName)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	mergeConfig(opts, cfg)

	if opts.inputDir == "" {
		return errors.New("no input directory: pass --input or set input.defaultDir in the config")
	}
	if opts.outputDir == "" {
		return errors.New("no output directory: pass --out or set output.defaultDir in the config")
	}

	wantHTML, wantPDF, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name = filepath.Base(filepath.Clean(opts.inputDir))
	}

	fragments, err := discoverFragments(opts.inputDir)
	if err != nil {
		return err
	}
	logger.Info("fragments discovered", "count", len(fragments), "dir", opts.inputDir)

	pipelineOpts := []bookbind.Option{bookbind.WithLogger(logger)}
	if opts.timeout > 0 {
		pipelineOpts = append(pipelineOpts, bookbind.WithTimeout(opts.timeout))
	}

	p := bookbind.New(pipelineOpts...)
	defer func() { _ = p.Close() }()

	result, err := p.Publish(cmd.Context(), bookbind.PublishRequest{
		Name:      name,
		Fragments: fragments,
		OutputDir: opts.outputDir,
		HTML:      wantHTML,
		PDF:       wantPDF,
		Style:     styleFromOptions(opts),
	})
	if result != nil {
		reportResult(cmd, result)
	}
	if err != nil {
		reportAttempts(logger, err)
		return err
	}
	return nil
}

// mergeConfig fills unset flag values from the config file.
func mergeConfig(opts *publishOptions, cfg *Config) {
	if opts.inputDir == "" {
		opts.inputDir = cfg.Input.DefaultDir
	}
	if opts.outputDir == "" {
		opts.outputDir = cfg.Output.DefaultDir
	}
	if opts.formats == "" {
		opts.formats = cfg.Output.Formats
	}
	if opts.stylesheetURL == "" {
		opts.stylesheetURL = cfg.Style.StylesheetURL
	}
	if opts.mermaidURL == "" {
		opts.mermaidURL = cfg.Style.MermaidURL
	}
	if opts.tocDepth == 0 {
		opts.tocDepth = cfg.Style.TOCDepth
	}
	if opts.pageSize == "" {
		opts.pageSize = cfg.Style.PageSize
	}
	if opts.orientation == "" {
		opts.orientation = cfg.Style.Orientation
	}
	if opts.margin == 0 {
		opts.margin = cfg.Style.Margin
	}
}

// parseFormats maps the format selector to target flags.
func parseFormats(s string) (html, pdf bool, err error) {
	switch strings.ToLower(s) {
	case "", "both":
		return true, true, nil
	case "html":
		return true, false, nil
	case "pdf":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unknown format %q (want html, pdf, or both)", s)
	}
}

// styleFromOptions builds style options from flags, leaving zero values
// for the library defaults.
func styleFromOptions(opts *publishOptions) *bookbind.StyleOptions {
	style := &bookbind.StyleOptions{
		StylesheetURL: opts.stylesheetURL,
		MermaidURL:    opts.mermaidURL,
		TOCDepth:      opts.tocDepth,
	}
	if opts.pageSize != "" || opts.orientation != "" || opts.margin != 0 {
		page := bookbind.DefaultPageSettings()
		if opts.pageSize != "" {
			page.Size = opts.pageSize
		}
		if opts.orientation != "" {
			page.Orientation = opts.orientation
		}
		if opts.margin != 0 {
			page.Margin = opts.margin
		}
		style.Page = page
	}
	return style
}

// reportResult prints the artifacts a run produced.
func reportResult(cmd *cobra.Command, result *bookbind.PublishResult) {
	if result.CombinedPath != "" {
		cmd.Printf("Combined document: %s\n", result.CombinedPath)
	}
	if result.HTML != nil {
		cmd.Printf("HTML: %s (engine: %s)\n", result.HTML.ArtifactPath, result.HTML.EngineUsed)
	}
	if result.PDF != nil {
		cmd.Printf("PDF: %s (engine: %s)\n", result.PDF.ArtifactPath, result.PDF.EngineUsed)
	}
}

// reportAttempts surfaces the full attempt log of every aggregate failure
// verbatim, one line per engine, so the user sees what was tried and why
// each attempt failed.
func reportAttempts(logger *charmlog.Logger, err error) {
	for _, e := range flattenErrors(err) {
		var agg *bookbind.AggregateFailure
		if !errors.As(e, &agg) {
			continue
		}
		for i, attempt := range agg.Attempts {
			logger.Error("engine attempt failed",
				"target", agg.Target,
				"order", i+1,
				"engine", attempt.Engine,
				"detail", attempt.Detail,
			)
		}
	}
}

// flattenErrors unwraps an errors.Join result into its parts.
func flattenErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

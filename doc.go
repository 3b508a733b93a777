// Package bookbind assembles generated tutorial chapters into one ordered
// document and renders it to HTML and PDF by driving a sequence of
// rendering engines until one succeeds.
//
// # Quick Start
//
// Create a pipeline, publish a fragment set, and close when done:
//
//	p := bookbind.New()
//	defer p.Close()
//
//	result, err := p.Publish(ctx, bookbind.PublishRequest{
//	    Name:      "my-project",
//	    OutputDir: "output",
//	    HTML:      true,
//	    PDF:       true,
//	    Fragments: []bookbind.Fragment{
//	        {Name: "index.md", Content: "# Overview"},
//	        {Name: "01_intro.md", Content: "# Chapter 1"},
//	    },
//	})
//
// On success the result names the combined document, the artifact paths,
// and which engine produced each artifact. On total failure the error is
// an *AggregateFailure carrying one attempt record per engine tried.
//
// # Engine Fallback
//
// Each target format has an ordered chain of engines, tried strictly one
// at a time:
//
//	PDF:  pandoc (external compiler) -> chrome (headless browser) -> goldmark (in-process)
//	HTML: pandoc (external compiler) -> goldmark (in-process)
//
// An engine failure (tool missing, non-zero exit, timeout) is recovered
// inside the chain and recorded; only exhaustion of the whole chain
// surfaces to the caller. Partial artifacts are never left behind.
//
// # Resource Discipline
//
// Every intermediate file is a scoped temp resource owned by the run. It
// is released when the operation that acquired it ends, with the run
// scope as a backstop, so a run leaves nothing behind beyond the
// artifacts the caller asked for.
//
// # Configuration
//
// Use functional options to customize the pipeline:
//
//	p := bookbind.New(
//	    bookbind.WithTimeout(2 * time.Minute),
//	    bookbind.WithLogger(logger),
//	)
//
// Configuration is explicit; nothing is read from the environment during
// a run.
package bookbind

package bookbind

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const goldmarkSample = "# Getting Started\n\n" +
	"Some *emphasis* and a [link](https://example.com).\n\n" +
	"```go\nfunc main() {}\n```\n\n" +
	"```mermaid\nflowchart TD\n    A --> B\n```\n\n" +
	"| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
	"---\n"

func TestGoldmarkHTMLRender(t *testing.T) {
	engine := newGoldmarkHTMLEngine()
	out := filepath.Join(t.TempDir(), "out.html")

	if err := engine.Render(context.Background(), nil, goldmarkSample, out, DefaultStyleOptions()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	html := string(content)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Getting Started</h1>", // auto heading ID precedes the text
		"<em>emphasis</em>",
		`<div class="mermaid">`,
		"flowchart TD",
		"<table>",
		DefaultMermaidURL,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}

	// Diagram fences become diagram containers, not highlighted code.
	if strings.Contains(html, `<code class="language-mermaid">`) {
		t.Error("mermaid fence rendered as a plain code block")
	}
}

func TestGoldmarkHTMLHeadingAnchors(t *testing.T) {
	engine := newGoldmarkHTMLEngine()
	out := filepath.Join(t.TempDir(), "out.html")

	if err := engine.Render(context.Background(), nil, "## Core Concepts\n", out, DefaultStyleOptions()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	content, _ := os.ReadFile(out)
	if !strings.Contains(string(content), `id="core-concepts"`) {
		t.Errorf("heading lacks anchor id:\n%s", content)
	}
}

func TestGoldmarkHTMLCancelled(t *testing.T) {
	engine := newGoldmarkHTMLEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "out.html")
	err := engine.Render(ctx, nil, "# doc", out, DefaultStyleOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("artifact written despite cancellation")
	}
}

func TestGoldmarkPDFRender(t *testing.T) {
	engine := newGoldmarkPDFEngine()
	out := filepath.Join(t.TempDir(), "out.pdf")

	if err := engine.Render(context.Background(), nil, goldmarkSample, out, DefaultStyleOptions()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if !strings.HasPrefix(string(content), "%PDF-") {
		t.Error("artifact does not start with a PDF header")
	}
}

func TestGoldmarkPDFLandscapeLetter(t *testing.T) {
	engine := newGoldmarkPDFEngine()
	out := filepath.Join(t.TempDir(), "out.pdf")

	opts := DefaultStyleOptions()
	opts.Page.Size = PageSizeLetter
	opts.Page.Orientation = OrientationLandscape

	if err := engine.Render(context.Background(), nil, "# Wide\n\ncontent\n", out, opts); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("artifact missing or empty: %v", err)
	}
}

func TestGoldmarkPDFCancelledLeavesNoArtifact(t *testing.T) {
	engine := newGoldmarkPDFEngine()
	out := filepath.Join(t.TempDir(), "out.pdf")

	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		sb.WriteString("# Section\n\nA paragraph that takes a moment to lay out on the page.\n\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
	defer cancel()

	err := engine.Render(ctx, nil, sb.String(), out, DefaultStyleOptions())
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Render() error = %v", err)
	}
	if err != nil {
		// When Render reports cancellation the partial artifact must
		// already be gone, not scheduled for removal.
		if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
			t.Error("partial artifact present after cancelled render")
		}
	}
}

func TestGoldmarkPDFNestedLists(t *testing.T) {
	engine := newGoldmarkPDFEngine()
	out := filepath.Join(t.TempDir(), "out.pdf")

	source := "1. first\n2. second\n   - nested a\n   - nested b\n3. third\n"
	if err := engine.Render(context.Background(), nil, source, out, DefaultStyleOptions()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("artifact missing or empty: %v", err)
	}
}

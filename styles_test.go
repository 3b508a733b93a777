package bookbind

import (
	"strings"
	"testing"
)

func TestHeadBlockDeterministic(t *testing.T) {
	opts := DefaultStyleOptions()
	if headBlock(opts) != headBlock(opts) {
		t.Error("equal options produced different head blocks")
	}
}

func TestHeadBlockContents(t *testing.T) {
	opts := DefaultStyleOptions()
	head := headBlock(opts)

	for _, want := range []string{
		opts.MermaidURL,
		"mermaid.initialize",
		"startOnLoad: true",
		".markdown-body",
	} {
		if !strings.Contains(head, want) {
			t.Errorf("head block missing %q", want)
		}
	}
}

func TestHeadBlockCustomMermaidURL(t *testing.T) {
	opts := DefaultStyleOptions()
	opts.MermaidURL = "https://example.com/mermaid.js"

	head := headBlock(opts)
	if !strings.Contains(head, `<script src="https://example.com/mermaid.js"></script>`) {
		t.Errorf("head block does not reference the custom script URL:\n%s", head)
	}
}

func TestWrapHTMLDocument(t *testing.T) {
	doc := wrapHTMLDocument("My Title", "<style>x</style>", "<p>body</p>")

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta charset="utf-8">`,
		"<title>My Title</title>",
		"<style>x</style>",
		`<article class="markdown-body">`,
		"<p>body</p>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if !strings.HasSuffix(doc, "</html>\n") {
		t.Error("document not terminated")
	}
}

package bookbind

import "strings"

// Default presentation asset references, pinned so output is reproducible.
const (
	DefaultStylesheetURL = "https://cdn.jsdelivr.net/npm/github-markdown-css/github-markdown.min.css"
	DefaultMermaidURL    = "https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"
)

// mermaidInitScript initializes the diagram renderer once the DOM is ready.
const mermaidInitScript = `<script>
    document.addEventListener('DOMContentLoaded', function() {
        mermaid.initialize({
            startOnLoad: true,
            theme: 'default',
            securityLevel: 'loose',
            flowchart: { useMaxWidth: false, htmlLabels: true }
        });
    });
</script>`

// headStylesheet is the fixed stylesheet injected into rendered markup:
// bounded content width, code-block background, table borders, centered
// diagrams.
const headStylesheet = `<style>
    .markdown-body {
        box-sizing: border-box;
        min-width: 200px;
        max-width: 980px;
        margin: 0 auto;
        padding: 45px;
    }
    @media (max-width: 767px) {
        .markdown-body {
            padding: 15px;
        }
    }
    pre {
        background-color: #f6f8fa;
        border-radius: 3px;
        padding: 16px;
        overflow: auto;
    }
    code {
        font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, Courier, monospace;
        background-color: rgba(27, 31, 35, 0.05);
        border-radius: 3px;
        padding: 0.2em 0.4em;
        margin: 0;
    }
    pre code {
        background-color: transparent;
        padding: 0;
    }
    table, th, td {
        border: 1px solid #dfe2e5;
        border-collapse: collapse;
    }
    th, td {
        padding: 6px 13px;
    }
    .mermaid {
        text-align: center;
        margin: 20px 0;
    }
</style>`

// documentStylesheet styles the standalone document produced by the
// direct-compiler path. Supplied to the tool as literal input, never
// negotiated with it.
const documentStylesheet = `body {
    font-family: 'Arial', sans-serif;
    line-height: 1.6;
    max-width: 800px;
    margin: 0 auto;
    padding: 20px;
}
h1, h2, h3, h4, h5, h6 {
    color: #333;
    margin-top: 24px;
    margin-bottom: 16px;
}
h1 {
    font-size: 2em;
    border-bottom: 1px solid #eaecef;
    padding-bottom: 0.3em;
}
h2 {
    font-size: 1.5em;
    border-bottom: 1px solid #eaecef;
    padding-bottom: 0.3em;
}
code {
    font-family: 'Courier New', Courier, monospace;
    background-color: #f6f8fa;
    padding: 0.2em 0.4em;
    border-radius: 3px;
}
pre {
    background-color: #f6f8fa;
    border-radius: 3px;
    padding: 16px;
    overflow: auto;
}
pre code {
    background-color: transparent;
    padding: 0;
}
blockquote {
    border-left: 4px solid #dfe2e5;
    padding: 0 1em;
    color: #6a737d;
}
table {
    border-collapse: collapse;
    width: 100%;
    margin-bottom: 16px;
}
table, th, td {
    border: 1px solid #dfe2e5;
}
th, td {
    padding: 6px 13px;
}
th {
    background-color: #f6f8fa;
}
img {
    max-width: 100%;
}
hr {
    height: 0.25em;
    padding: 0;
    margin: 24px 0;
    background-color: #e1e4e8;
    border: 0;
}
`

// headBlock builds the presentation header injected into rendered markup:
// the diagram-rendering script plus its initialization, and the fixed
// stylesheet. The transform is pure; equal options yield byte-identical
// output.
func headBlock(opts *StyleOptions) string {
	var sb strings.Builder
	sb.WriteString(`<script src="`)
	sb.WriteString(opts.MermaidURL)
	sb.WriteString("\"></script>\n")
	sb.WriteString(mermaidInitScript)
	sb.WriteString("\n")
	sb.WriteString(headStylesheet)
	return sb.String()
}

// wrapHTMLDocument assembles a complete HTML5 document around a rendered
// body fragment. Used by the in-process engine; the external compiler
// produces its own standalone envelope.
func wrapHTMLDocument(title, head, body string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(title)
	sb.WriteString("</title>\n")
	sb.WriteString(head)
	sb.WriteString("\n</head>\n<body>\n<article class=\"markdown-body\">\n")
	sb.WriteString(body)
	sb.WriteString("</article>\n</body>\n</html>\n")
	return sb.String()
}

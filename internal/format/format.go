// Package format renders a finished research report in the supported
// output formats: plain text, markdown, or a standalone HTML page.
package format

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Output is a formatted report plus its MIME type.
type Output struct {
	Content  string
	Format   string
	MIMEType string
}

var (
	headerRe   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	emphasisRe = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
)

// Format renders the report content in the requested format. sources are
// appended as a trailing section; an empty slice still emits the section
// header for consistency with the markdown layout.
func Format(content string, sources []string, outputFormat, title string) (*Output, error) {
	switch outputFormat {
	case "text":
		return formatText(content, sources, title), nil
	case "markdown":
		return formatMarkdown(content, sources, title), nil
	case "html":
		return formatHTML(content, sources, title)
	default:
		return nil, fmt.Errorf("invalid output format: %s", outputFormat)
	}
}

func formatText(content string, sources []string, title string) *Output {
	var lines []string
	if title != "" {
		lines = append(lines, title, strings.Repeat("=", len(title)), "")
	}
	lines = append(lines, stripMarkdown(content), "\nSources:")
	for _, source := range sources {
		lines = append(lines, "- "+source)
	}
	return &Output{
		Content:  strings.Join(lines, "\n"),
		Format:   "text",
		MIMEType: "text/plain",
	}
}

func formatMarkdown(content string, sources []string, title string) *Output {
	var lines []string
	if title != "" {
		lines = append(lines, "# "+title, "")
	}
	lines = append(lines, content, "\n## Sources")
	for _, source := range sources {
		lines = append(lines, "* "+source)
	}
	return &Output{
		Content:  strings.Join(lines, "\n"),
		Format:   "markdown",
		MIMEType: "text/markdown",
	}
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`

func formatHTML(content string, sources []string, title string) (*Output, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	markdown := formatMarkdown(content, sources, title).Content

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("rendering report to HTML: %w", err)
	}

	tmpl, err := template.New("page").Parse(htmlPage)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	pageTitle := title
	if pageTitle == "" {
		pageTitle = "Research Report"
	}

	var page bytes.Buffer
	err = tmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{Title: pageTitle, Body: template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}

	return &Output{
		Content:  page.String(),
		Format:   "html",
		MIMEType: "text/html",
	}, nil
}

// stripMarkdown removes header and emphasis markers for the plain-text
// rendition. Link syntax and tables pass through untouched.
func stripMarkdown(content string) string {
	content = headerRe.ReplaceAllString(content, "")
	content = emphasisRe.ReplaceAllString(content, "$2")
	return content
}

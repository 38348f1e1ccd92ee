// Package extract pulls readable text content out of web pages for
// downstream chunking and synthesis.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	requestTimeout   = 10 * time.Second
	minContentLength = 100
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// \p{L}\p{N} rather than \w: Go's \w is ASCII-only and would strip
	// accented and CJK letters from extracted pages.
	specialRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)
)

// Document is the extracted text content of one page.
type Document struct {
	Title   string
	Content string
	URL     string
}

// Extractor fetches pages and extracts their title and main text.
type Extractor struct {
	client *http.Client
	logger *zap.Logger
}

// NewExtractor creates an Extractor with a 10s request timeout.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// ExtractFromURL fetches the page and parses its title and main content.
func (e *Extractor) ExtractFromURL(ctx context.Context, pageURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	return parseDocument(doc, pageURL), nil
}

func parseDocument(doc *goquery.Document, pageURL string) *Document {
	doc.Find("script, style, nav, footer, iframe").Remove()

	return &Document{
		Title:   cleanText(extractTitle(doc)),
		Content: cleanText(extractMainContent(doc)),
		URL:     pageURL,
	}
}

// extractTitle prefers the og:title meta tag, then <title>, then the
// first h1.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && og != "" {
		return og
	}
	if title := doc.Find("title").First().Text(); title != "" {
		return title
	}
	return doc.Find("h1").First().Text()
}

// contentSelectors are tried in order; the first container with more
// than minContentLength characters of text wins.
var contentSelectors = []string{
	"main",
	"article",
	`[id^="content"], [id^="main"], [id^="article"]`,
	`[class^="content"], [class^="main"], [class^="article"]`,
}

func extractMainContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := selectionText(sel); len(text) > minContentLength {
			return text
		}
	}
	return selectionText(doc.Find("body").First())
}

// selectionText joins the text nodes of a selection with spaces so words
// from adjacent elements do not run together.
func selectionText(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		var text string
		if goquery.NodeName(s) == "#text" {
			text = s.Text()
		} else {
			text = selectionText(s)
		}
		if t := strings.TrimSpace(text); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// cleanText collapses whitespace, strips special characters and
// collapses repeated punctuation.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	text = collapsePunctuation(text)
	return strings.TrimSpace(text)
}

func collapsePunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		if r == prev {
			switch r {
			case '.', ',', '!', '?':
				continue
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

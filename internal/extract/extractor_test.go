package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const longText = "This paragraph is deliberately long enough to pass the minimum content length check applied to candidate containers during extraction."

func TestExtractTitleFromOGMeta(t *testing.T) {
	srv := serve(t, `<html><head>
		<meta property="og:title" content="OG Title">
		<title>Page Title</title>
	</head><body><main>`+longText+`</main></body></html>`)

	doc, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	if doc.Title != "OG Title" {
		t.Errorf("title = %q, want og:title", doc.Title)
	}
	if doc.URL != srv.URL {
		t.Errorf("url = %q", doc.URL)
	}
}

func TestExtractTitleFallbacks(t *testing.T) {
	srv := serve(t, `<html><head><title>Doc Title</title></head><body><main>`+longText+`</main></body></html>`)
	doc, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	if doc.Title != "Doc Title" {
		t.Errorf("title = %q, want <title> text", doc.Title)
	}

	srv2 := serve(t, `<html><body><h1>Heading Title</h1><main>`+longText+`</main></body></html>`)
	doc2, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv2.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	if doc2.Title != "Heading Title" {
		t.Errorf("title = %q, want first h1", doc2.Title)
	}
}

func TestExtractDropsNoiseElements(t *testing.T) {
	srv := serve(t, `<html><body>
		<nav>Navigation links</nav>
		<main>`+longText+`</main>
		<script>var secret = 42;</script>
		<footer>Copyright notice</footer>
	</body></html>`)

	doc, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	for _, noise := range []string{"Navigation", "secret", "Copyright"} {
		if strings.Contains(doc.Content, noise) {
			t.Errorf("content contains removed element text %q", noise)
		}
	}
	if !strings.Contains(doc.Content, "deliberately long") {
		t.Errorf("content missing main text: %q", doc.Content)
	}
}

func TestExtractPrefersMainContainer(t *testing.T) {
	srv := serve(t, `<html><body>
		<div>Unrelated sidebar text that should not be selected as the page body.</div>
		<article>`+longText+`</article>
	</body></html>`)

	doc, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	if !strings.Contains(doc.Content, "deliberately long") {
		t.Errorf("content = %q", doc.Content)
	}
	if strings.Contains(doc.Content, "sidebar") {
		t.Errorf("article extraction leaked sibling text: %q", doc.Content)
	}
}

func TestExtractShortContainerFallsBackToBody(t *testing.T) {
	srv := serve(t, `<html><body>
		<main>Too short.</main>
		<p>`+longText+`</p>
	</body></html>`)

	doc, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	if !strings.Contains(doc.Content, "deliberately long") {
		t.Errorf("expected body fallback, got %q", doc.Content)
	}
}

func TestExtractHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestExtractPreservesNonASCIIText(t *testing.T) {
	const german = "Die Klimaforschung in München zeigt, dass sich die Temperaturen in den Alpen schneller verändern als im weltweiten Durchschnitt."
	srv := serve(t, `<html><head><title>Klimabericht für München</title></head>
		<body><main>`+german+` 気候変動は深刻です。</main></body></html>`)

	doc, err := NewExtractor(nil).ExtractFromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL() error = %v", err)
	}
	if doc.Title != "Klimabericht für München" {
		t.Errorf("title = %q, accented letters were mangled", doc.Title)
	}
	for _, word := range []string{"München", "verändern", "気候変動は深刻です"} {
		if !strings.Contains(doc.Content, word) {
			t.Errorf("content lost non-ASCII text %q: %q", word, doc.Content)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace collapse", "a  b\n\tc", "a b c"},
		{"special characters", "hello <world> friends", "hello world friends"},
		{"repeated punctuation", "wait... what,, really!!", "wait. what, really!"},
		{"accented letters", "Das Klima in München verändert sich.", "Das Klima in München verändert sich."},
		{"cjk letters", "気候変動は深刻です。", "気候変動は深刻です"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

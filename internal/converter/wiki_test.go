package converter

import (
	"context"
	"strings"
	"testing"

	"docmark/internal/domain"
	"docmark/internal/markdown"
)

const sampleArticle = `<html>
<head><title>Gopher - Wikipedia</title></head>
<body>
<span class="mw-page-title-main">Gopher</span>
<div id="mw-content-text"><div class="mw-parser-output">
<p>A gopher is a burrowing rodent.</p>
<h2>Habitat</h2>
<p>Mostly underground.</p>
<h2>Diet</h2>
<p>Roots and tubers.</p>
</div></div>
</body>
</html>`

func TestWikipediaConverterDeclinesOtherHosts(t *testing.T) {
	path := writeTestFile(t, "page.html", sampleArticle)
	c := NewWikipediaConverter(markdown.NewEngine())

	for _, src := range []string{"", "https://example.com/wiki/Gopher"} {
		res, err := c.Convert(context.Background(), domain.ConversionRequest{
			Path: path, Extension: ".html", SourceURL: src,
		})
		if err != nil || res != nil {
			t.Errorf("source %q: expected decline, got res=%v err=%v", src, res, err)
		}
	}
}

func TestWikipediaConverterArticle(t *testing.T) {
	path := writeTestFile(t, "page.html", sampleArticle)
	res, err := NewWikipediaConverter(markdown.NewEngine()).Convert(context.Background(), domain.ConversionRequest{
		Path: path, Extension: ".html",
		SourceURL: "https://en.wikipedia.org/wiki/Gopher",
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res == nil {
		t.Fatal("converter declined a wikipedia article")
	}

	if res.Title == nil || *res.Title != "Gopher" {
		t.Errorf("got title %v, want page title span", res.Title)
	}
	if !strings.HasPrefix(res.Markdown, "# Gopher") {
		t.Errorf("missing article heading: %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "### Contents") ||
		!strings.Contains(res.Markdown, "- [Habitat](#habitat)") ||
		!strings.Contains(res.Markdown, "- [Diet](#diet)") {
		t.Errorf("missing table of contents: %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "A gopher is a burrowing rodent.") {
		t.Errorf("missing introduction content: %q", res.Markdown)
	}
	if strings.Contains(res.Markdown, "## Introduction") {
		t.Errorf("implicit section must not get a heading: %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "## Habitat") || !strings.Contains(res.Markdown, "## Diet") {
		t.Errorf("missing section headings: %q", res.Markdown)
	}
	hi := strings.Index(res.Markdown, "## Habitat")
	di := strings.Index(res.Markdown, "## Diet")
	if hi > di {
		t.Errorf("sections out of document order: %q", res.Markdown)
	}
}

func TestWikipediaConverterNonArticlePageFallsThrough(t *testing.T) {
	path := writeTestFile(t, "page.html", "<html><body><p>portal page</p></body></html>")
	res, err := NewWikipediaConverter(markdown.NewEngine()).Convert(context.Background(), domain.ConversionRequest{
		Path: path, Extension: ".html",
		SourceURL: "https://en.wikipedia.org/wiki/Special:Random",
	})
	if err != nil || res != nil {
		t.Errorf("pages without an article body must fall through, got res=%v err=%v", res, err)
	}
}

package converter

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"docmark/internal/domain"
	"docmark/internal/markdown"
)

// wikipediaConverter handles Wikipedia article pages. It runs before the
// generic html converter (lower priority value) and declines anything whose
// source URL is not a Wikipedia host, so local .html files and other sites
// fall through to the generic handler.
//
// Unlike the generic converter it extracts only the article body and uses
// the section segmenter to rebuild document structure with a leading table
// of contents.
type wikipediaConverter struct {
	priority  int
	sanitizer *bluemonday.Policy
	engine    *markdown.Engine
}

// NewWikipediaConverter creates the Wikipedia page converter.
func NewWikipediaConverter(engine *markdown.Engine) domain.Converter {
	return &wikipediaConverter{
		priority:  15,
		sanitizer: newSanitizerPolicy(),
		engine:    engine,
	}
}

func (c *wikipediaConverter) Name() string  { return "wikipedia" }
func (c *wikipediaConverter) Priority() int { return c.priority }

func (c *wikipediaConverter) CanHandle(ext string) bool {
	return ext == ".html" || ext == ".htm"
}

func (c *wikipediaConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	if !isWikipediaURL(req.SourceURL) {
		return nil, nil
	}

	content, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("span.mw-page-title-main").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	article := doc.Find("#mw-content-text").First()
	if article.Length() == 0 {
		// not an article page; let the generic html converter have it
		return nil, nil
	}
	articleHTML, err := goquery.OuterHtml(article)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	root, err := markdown.Parse(bytes.NewReader(c.sanitizer.SanitizeBytes([]byte(articleHTML))))
	if err != nil {
		return nil, fmt.Errorf("parse article: %w", err)
	}
	body := markdown.Body(root)

	// The article markup wraps content in nested container divs
	// (mw-content-text, parser-output); descend through single-div wrappers
	// so headings sit at the level the segmenter walks.
	segRoot := body
	for len(segRoot.Children) == 1 && segRoot.Children[0].TagName == "div" {
		segRoot = segRoot.Children[0]
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString("# " + title + "\n")
	}
	if toc := c.engine.TableOfContents(segRoot); toc != "" {
		sb.WriteString("\n### Contents\n\n" + toc)
	}
	for _, section := range c.engine.Segment(segRoot) {
		if section.AnchorID == "introduction" && section.Level == 2 && section.Title == "Introduction" {
			sb.WriteString("\n" + section.Content + "\n")
			continue
		}
		sb.WriteString("\n" + strings.Repeat("#", section.Level) + " " + section.Title + "\n")
		if section.Content != "" {
			sb.WriteString("\n" + section.Content + "\n")
		}
	}

	result := &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}
	if title != "" {
		result.Title = &title
	}
	return result, nil
}

func isWikipediaURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

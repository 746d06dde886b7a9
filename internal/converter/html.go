package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"docmark/internal/domain"
	"docmark/internal/markdown"
)

// htmlConverter converts markup pages to markdown in two stages, the same
// shape as a sanitizing importer:
//  1. Sanitize the HTML (scripts, event handlers, javascript: URLs removed)
//  2. Parse and run the tree through the rewrite engine
type htmlConverter struct {
	priority  int
	sanitizer *bluemonday.Policy
	engine    *markdown.Engine
}

// NewHTMLConverter creates the generic markup converter.
func NewHTMLConverter(engine *markdown.Engine) domain.Converter {
	return &htmlConverter{
		priority:  20,
		sanitizer: newSanitizerPolicy(),
		engine:    engine,
	}
}

// newSanitizerPolicy builds the shared pre-conversion policy: UGC defaults
// plus data URI images, which the engine later truncates itself.
func newSanitizerPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return policy
}

func (c *htmlConverter) Name() string  { return "html" }
func (c *htmlConverter) Priority() int { return c.priority }

func (c *htmlConverter) CanHandle(ext string) bool {
	switch ext {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func (c *htmlConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	content, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}

	title, body, err := parsePage(c.sanitizer, content)
	if err != nil {
		return nil, err
	}

	result := &domain.ConversionResult{Markdown: c.engine.Render(body)}
	if title != "" {
		result.Title = &title
	}
	return result, nil
}

// parsePage sanitizes raw HTML, extracts the page title and returns the
// body subtree ready for the rewrite engine.
func parsePage(policy *bluemonday.Policy, content []byte) (title string, body *markdown.Node, err error) {
	sanitized := policy.SanitizeBytes(content)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("parse html: %w", err)
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	root, err := markdown.Parse(bytes.NewReader(sanitized))
	if err != nil {
		return "", nil, fmt.Errorf("parse sanitized html: %w", err)
	}
	return title, markdown.Body(root), nil
}

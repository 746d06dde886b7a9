package converter

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"docmark/internal/domain"
	"docmark/internal/markdown"
)

// feedConverter handles RSS 2.0 and Atom feeds. Item descriptions are HTML
// in practice, so each one runs through the rewrite engine.
//
// Generic .xml files that parse as neither feed dialect are declined rather
// than failed, leaving them to other converters or UnsupportedFormat.
type feedConverter struct {
	priority int
	engine   *markdown.Engine
}

// NewFeedConverter creates the RSS/Atom feed converter.
func NewFeedConverter(engine *markdown.Engine) domain.Converter {
	return &feedConverter{priority: 20, engine: engine}
}

func (c *feedConverter) Name() string  { return "feed" }
func (c *feedConverter) Priority() int { return c.priority }

func (c *feedConverter) CanHandle(ext string) bool {
	switch ext {
	case ".rss", ".atom", ".xml":
		return true
	}
	return false
}

type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title       string `xml:"title"`
		Description string `xml:"description"`
		Items       []struct {
			Title       string `xml:"title"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
			Encoded     string `xml:"encoded"` // content:encoded
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []struct {
		Title   string `xml:"title"`
		Updated string `xml:"updated"`
		Summary string `xml:"summary"`
		Content string `xml:"content"`
	} `xml:"entry"`
}

func (c *feedConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	content, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}

	if res := c.convertRSS(content); res != nil {
		return res, nil
	}
	if res := c.convertAtom(content); res != nil {
		return res, nil
	}
	if req.Extension == ".xml" {
		// plain XML, not a feed
		return nil, nil
	}
	return nil, fmt.Errorf("%s is not a recognizable RSS or Atom feed", req.Path)
}

func (c *feedConverter) convertRSS(content []byte) *domain.ConversionResult {
	var doc rssDoc
	if err := xml.Unmarshal(content, &doc); err != nil || doc.Channel.Title == "" && len(doc.Channel.Items) == 0 {
		return nil
	}

	var sb strings.Builder
	title := strings.TrimSpace(doc.Channel.Title)
	if title != "" {
		sb.WriteString("# " + title + "\n")
	}
	if desc := strings.TrimSpace(doc.Channel.Description); desc != "" {
		sb.WriteString("\n" + desc + "\n")
	}

	for _, item := range doc.Channel.Items {
		sb.WriteString("\n## " + strings.TrimSpace(item.Title) + "\n")
		if item.PubDate != "" {
			sb.WriteString("\nPublished on: " + strings.TrimSpace(item.PubDate) + "\n")
		}
		body := item.Encoded
		if body == "" {
			body = item.Description
		}
		if md := c.renderHTMLFragment(body); md != "" {
			sb.WriteString("\n" + md + "\n")
		}
	}

	res := &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}
	if title != "" {
		res.Title = &title
	}
	return res
}

func (c *feedConverter) convertAtom(content []byte) *domain.ConversionResult {
	var doc atomDoc
	if err := xml.Unmarshal(content, &doc); err != nil || doc.Title == "" && len(doc.Entries) == 0 {
		return nil
	}

	var sb strings.Builder
	title := strings.TrimSpace(doc.Title)
	if title != "" {
		sb.WriteString("# " + title + "\n")
	}

	for _, entry := range doc.Entries {
		sb.WriteString("\n## " + strings.TrimSpace(entry.Title) + "\n")
		if entry.Updated != "" {
			sb.WriteString("\nUpdated on: " + strings.TrimSpace(entry.Updated) + "\n")
		}
		body := entry.Content
		if body == "" {
			body = entry.Summary
		}
		if md := c.renderHTMLFragment(body); md != "" {
			sb.WriteString("\n" + md + "\n")
		}
	}

	res := &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}
	if title != "" {
		res.Title = &title
	}
	return res
}

// renderHTMLFragment runs a feed item's HTML body through the rewrite
// engine. Plain-text bodies survive the round trip unchanged.
func (c *feedConverter) renderHTMLFragment(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	root, err := markdown.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return c.engine.Render(markdown.Body(root))
}

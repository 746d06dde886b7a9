package converter

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"docmark/internal/domain"
)

// videoPageConverter handles YouTube watch pages: metadata from the page
// markup, plus a transcript lookup through the injected network client. The
// transcript fetch inherits the client's bounded retry; when it fails the
// output degrades to a placeholder line rather than aborting the
// conversion.
type videoPageConverter struct {
	priority int
}

// NewVideoPageConverter creates the video watch-page converter.
func NewVideoPageConverter() domain.Converter {
	return &videoPageConverter{priority: 15}
}

func (c *videoPageConverter) Name() string  { return "video-page" }
func (c *videoPageConverter) Priority() int { return c.priority }

func (c *videoPageConverter) CanHandle(ext string) bool {
	return ext == ".html" || ext == ".htm"
}

func (c *videoPageConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	videoID := youtubeVideoID(req.SourceURL)
	if videoID == "" {
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

	title := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString("# " + title + "\n")
	}
	writeMeta := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			sb.WriteString("\n" + label + ": " + value + "\n")
		}
	}
	writeMeta("Video URL", req.SourceURL)
	writeMeta("Description", doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	writeMeta("Keywords", doc.Find(`meta[name="keywords"]`).AttrOr("content", ""))
	writeMeta("Views", doc.Find(`meta[itemprop="interactionCount"]`).AttrOr("content", ""))

	sb.WriteString("\n### Transcript\n\n")
	sb.WriteString(c.transcript(ctx, req.Options, videoID))

	result := &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}
	if title != "" {
		result.Title = &title
	}
	return result, nil
}

// transcript fetches the video's caption track. Every failure path returns
// the same placeholder so a missing transcript never fails the page.
func (c *videoPageConverter) transcript(ctx context.Context, opts *domain.Options, videoID string) string {
	const placeholder = "[transcript unavailable]"
	if opts == nil || opts.Fetcher == nil {
		return placeholder
	}

	body, err := opts.Fetcher.Get(ctx,
		"https://www.youtube.com/api/timedtext?lang=en&v="+url.QueryEscape(videoID))
	if err != nil || len(body) == 0 {
		return placeholder
	}

	var track struct {
		Texts []struct {
			Value string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(body, &track); err != nil || len(track.Texts) == 0 {
		return placeholder
	}

	parts := make([]string, 0, len(track.Texts))
	for _, t := range track.Texts {
		if v := strings.TrimSpace(html.UnescapeString(t.Value)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return placeholder
	}
	return strings.Join(parts, " ")
}

// youtubeVideoID extracts the video id from watch and short-link URLs,
// returning "" for anything else.
func youtubeVideoID(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	switch host {
	case "youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			return u.Query().Get("v")
		}
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	}
	return ""
}

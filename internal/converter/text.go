package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"docmark/internal/domain"
)

// plainTextConverter handles plain text and markdown sources. Markdown is
// already the target representation, so the body passes through; an optional
// YAML front matter block supplies the title and is stripped from output.
type plainTextConverter struct {
	priority int
}

// NewPlainTextConverter creates the text/markdown converter.
func NewPlainTextConverter() domain.Converter {
	return &plainTextConverter{priority: 10}
}

func (c *plainTextConverter) Name() string  { return "text" }
func (c *plainTextConverter) Priority() int { return c.priority }

func (c *plainTextConverter) CanHandle(ext string) bool {
	switch ext {
	case ".txt", ".text", ".md", ".markdown":
		return true
	}
	return false
}

func (c *plainTextConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	content, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}

	// Binary payloads mislabeled as text are declined so lower-priority
	// converters (or UnsupportedFormat) take over.
	if bytes.ContainsRune(content, 0) {
		return nil, nil
	}

	meta, body := splitFrontMatter(content)
	result := &domain.ConversionResult{Markdown: strings.TrimSpace(string(body))}

	if title := frontMatterTitle(meta); title != "" {
		result.Title = &title
	} else if title := firstHeading(result.Markdown); title != "" {
		result.Title = &title
	}
	return result, nil
}

// splitFrontMatter separates a leading YAML front matter block from the
// body. Files without the opening delimiter pass through untouched.
func splitFrontMatter(content []byte) (map[string]any, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	lines := bytes.Split(content, []byte("\n"))
	closing := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			closing = i
			break
		}
	}
	if closing == 0 {
		return nil, content
	}

	var meta map[string]any
	if err := yaml.Unmarshal(bytes.Join(lines[1:closing], []byte("\n")), &meta); err != nil {
		// Malformed front matter is treated as body text, not a failure.
		return nil, content
	}
	return meta, bytes.Join(lines[closing+1:], []byte("\n"))
}

func frontMatterTitle(meta map[string]any) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta["title"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// firstHeading returns the text of the first ATX heading line, if any.
func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

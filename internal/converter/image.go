package converter

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"docmark/internal/domain"
)

// Image and audio sources carry no text of their own; everything useful
// comes from opaque collaborators carried in the options bag: a metadata
// extractor (gated on the exiftool capability probed at startup) and an
// enrichment callback for captions. Collaborator failures degrade to
// placeholders — a missing caption never fails the conversion.

const (
	captionPlaceholder    = "[no description available]"
	transcriptPlaceholder = "[transcript unavailable]"
)

var imageMetadataFields = []string{
	"ImageSize", "Title", "Description", "Keywords", "Artist",
	"DateTimeOriginal", "GPSPosition",
}

type imageConverter struct {
	priority int
}

// NewImageConverter creates the image converter.
func NewImageConverter() domain.Converter {
	return &imageConverter{priority: 30}
}

func (c *imageConverter) Name() string  { return "image" }
func (c *imageConverter) Priority() int { return c.priority }

func (c *imageConverter) CanHandle(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

func (c *imageConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	opts := req.Options
	if opts == nil || (opts.Metadata == nil && opts.Enrich == nil) {
		// no collaborators, nothing we can say about the image
		return nil, nil
	}

	var sb strings.Builder
	writeMetadataLines(ctx, &sb, opts, req.Path, imageMetadataFields)

	if opts.Enrich != nil {
		caption := enrichOrPlaceholder(ctx, opts, domain.EnrichRequest{
			Path:     req.Path,
			MimeType: mime.TypeByExtension(req.Extension),
			Prompt:   "Write a detailed caption for this image.",
		}, captionPlaceholder)
		sb.WriteString("\n# Description:\n\n" + caption + "\n")
	}

	return &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}, nil
}

// writeMetadataLines appends "Field: value" lines from the metadata
// collaborator. Skipped entirely when the extractor or the exiftool
// capability is absent; extraction errors degrade to no lines.
func writeMetadataLines(ctx context.Context, sb *strings.Builder, opts *domain.Options, path string, fields []string) {
	if opts.Metadata == nil || !opts.Capabilities.ExifTool {
		return
	}
	meta, err := opts.Metadata.Extract(ctx, path, fields)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Warn("metadata extraction failed", "path", path, "error", err)
		}
		return
	}
	for _, field := range fields {
		if v := strings.TrimSpace(meta[field]); v != "" {
			fmt.Fprintf(sb, "%s: %s\n", field, v)
		}
	}
}

// enrichOrPlaceholder invokes the enrichment callback, degrading every
// failure mode (error, empty result) to the given placeholder.
func enrichOrPlaceholder(ctx context.Context, opts *domain.Options, req domain.EnrichRequest, placeholder string) string {
	out, err := opts.Enrich(ctx, req)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Warn("enrichment failed", "path", req.Path, "error", err)
		}
		return placeholder
	}
	if strings.TrimSpace(out) == "" {
		return placeholder
	}
	return strings.TrimSpace(out)
}

// filenameTitle derives a fallback title from the source filename.
func filenameTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

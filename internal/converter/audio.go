package converter

import (
	"context"
	"strings"

	"docmark/internal/domain"
)

var audioMetadataFields = []string{
	"Title", "Artist", "Album", "Genre", "Duration", "Year",
}

type audioConverter struct {
	priority int
}

// NewAudioConverter creates the audio converter. Transcription itself is an
// opaque collaborator; without one the output is metadata plus a
// placeholder.
func NewAudioConverter() domain.Converter {
	return &audioConverter{priority: 30}
}

func (c *audioConverter) Name() string  { return "audio" }
func (c *audioConverter) Priority() int { return c.priority }

func (c *audioConverter) CanHandle(ext string) bool {
	switch ext {
	case ".wav", ".mp3", ".m4a", ".flac", ".ogg":
		return true
	}
	return false
}

func (c *audioConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	opts := req.Options
	if opts == nil || (opts.Metadata == nil && opts.Transcriber == nil) {
		return nil, nil
	}

	var sb strings.Builder
	writeMetadataLines(ctx, &sb, opts, req.Path, audioMetadataFields)

	if opts.Transcriber != nil {
		transcript := transcriptPlaceholder
		out, err := opts.Transcriber.Transcribe(ctx, req.Path)
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.Warn("transcription failed", "path", req.Path, "error", err)
			}
		} else if strings.TrimSpace(out) != "" {
			transcript = strings.TrimSpace(out)
		}
		sb.WriteString("\n### Audio Transcript:\n\n" + transcript + "\n")
	}

	return &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}, nil
}

// Package converter holds the concrete format converters registered into
// the dispatch registry: markup pages, structured text, feeds, notebooks,
// media collaborators and the archive expander.
package converter

import (
	"log/slog"

	"docmark/internal/domain"
	"docmark/internal/markdown"
)

// Standard returns the default converter set sharing one rewrite engine.
// The engine's image whitelist comes from opts; the set is safe to register
// into any registry.
func Standard(logger *slog.Logger, opts *domain.Options) []domain.Converter {
	engine := markdown.NewEngine()
	if opts != nil {
		engine.KeepInlineImagesIn(opts.KeepImagesIn...)
	}

	return []domain.Converter{
		NewPlainTextConverter(),
		NewWikipediaConverter(engine),
		NewVideoPageConverter(),
		NewHTMLConverter(engine),
		NewFeedConverter(engine),
		NewCSVConverter(),
		NewNotebookConverter(),
		NewImageConverter(),
		NewAudioConverter(),
		NewArchiveConverter(logger),
	}
}

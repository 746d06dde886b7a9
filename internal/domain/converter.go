package domain

import (
	"context"
	"log/slog"
)

// Converter turns one source file into markdown. Each converter claims a set
// of file extensions and may additionally inspect the request (for example
// the original URL of a downloaded page) before deciding whether it applies.
//
// Implementations should be stateless and thread-safe.
type Converter interface {
	// Name returns a human-readable converter name for logging/debugging.
	Name() string

	// Priority orders converters during dispatch. Lower values are tried
	// first. Converters sharing a priority resolve by registration order:
	// the most recently registered one wins.
	Priority() int

	// CanHandle reports whether this converter claims the given file
	// extension. Extensions always include the leading dot (".html").
	CanHandle(ext string) bool

	// Convert transforms the request's source into markdown.
	//
	// A (nil, nil) return means "not applicable": the converter looked at
	// the input and declined it, and dispatch moves on to the next
	// candidate. A non-nil error means the converter tried and failed;
	// dispatch records the failure and still moves on.
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error)
}

// ConversionRequest describes one dispatch attempt against one converter.
// Immutable once handed to Convert.
type ConversionRequest struct {
	// Path is the local filesystem path of the source. Remote sources are
	// downloaded to a scratch file before dispatch, so Path is always set.
	Path string

	// Extension is the candidate extension for this attempt, with leading
	// dot, lowercase. May differ from filepath.Ext(Path) when the caller
	// declared one explicitly.
	Extension string

	// SourceURL is the original remote URL when the source was downloaded,
	// empty for local files. Site-specific converters key off it.
	SourceURL string

	// Options carries the shared context bag for this conversion.
	Options *Options
}

// ConversionResult is the outcome of a successful conversion.
type ConversionResult struct {
	// Title is the document title when one could be extracted, nil otherwise.
	Title *string

	// Markdown is the normalized markdown text.
	Markdown string
}

// Dispatcher resolves a source file to a ConversionResult by trying
// registered converters in priority order. Implemented by convert.Registry;
// declared here so converters (notably the archive expander) can re-enter
// dispatch without importing the registry package.
type Dispatcher interface {
	// Dispatch tries each candidate extension against each converter in
	// ascending priority order and returns the first result. When exts is
	// empty the extension is derived from path.
	Dispatch(ctx context.Context, path string, exts []string, opts *Options) (*ConversionResult, error)

	// Without returns a dispatcher over the same converters minus the named
	// one. Used by container converters to avoid re-expanding entries of
	// their own format.
	Without(name string) Dispatcher
}

// Fetcher retrieves remote resources. Implementations must bound their
// retries; unbounded retry loops are not acceptable in a conversion path.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// EnrichRequest is the input to an enrichment callback: either a local media
// file or raw bytes, plus an instruction describing what is wanted.
type EnrichRequest struct {
	Path     string
	MimeType string
	Data     []byte
	Prompt   string
}

// EnrichFunc produces a textual enrichment (caption, description) for a
// media source. Returning ("", nil) or an error degrades to a placeholder in
// the surrounding conversion; it never aborts it.
type EnrichFunc func(ctx context.Context, req EnrichRequest) (string, error)

// MetadataExtractor reads metadata fields from a media file. The core treats
// implementations as opaque collaborators.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string, fields []string) (map[string]string, error)
}

// Transcriber produces a text transcript from an audio file. Opaque
// collaborator, same contract as MetadataExtractor.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Capabilities records which optional external tools were found at startup.
// Computed once (see config.ProbeCapabilities) and carried in Options so no
// converter reads ambient process state.
type Capabilities struct {
	ExifTool bool
	FFmpeg   bool
}

// Options is the context bag threaded through every dispatch. The registry
// fills Dispatcher before invoking converters; everything else is caller
// supplied at setup time.
type Options struct {
	Dispatcher   Dispatcher
	Fetcher      Fetcher
	Enrich       EnrichFunc
	Metadata     MetadataExtractor
	Transcriber  Transcriber
	Capabilities Capabilities

	// KeepImagesIn lists parent tag names for which inline images are kept
	// in markdown output instead of being reduced to their alt text.
	KeepImagesIn []string

	// SourceURL is the original remote URL when the dispatched file was
	// downloaded. Cleared by container converters before re-dispatching
	// extracted entries, which are plain local files.
	SourceURL string

	Logger *slog.Logger
}

// WithDispatcher returns a shallow copy of o with the dispatcher replaced.
// A nil receiver yields a fresh Options so callers can always dispatch.
func (o *Options) WithDispatcher(d Dispatcher) *Options {
	var c Options
	if o != nil {
		c = *o
	}
	c.Dispatcher = d
	return &c
}

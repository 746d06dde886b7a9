package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docmark/internal/converter"
	"docmark/internal/domain"
	"docmark/internal/fetch"
)

// NewStandardRegistry creates a registry pre-registered with the standard
// converter set. Callers extend it with Register; anything registered later
// at an equal priority wins over the standard converters.
func NewStandardRegistry(logger *slog.Logger, opts *domain.Options) *Registry {
	r := NewRegistry(logger)
	for _, c := range converter.Standard(logger, opts) {
		r.Register(c)
	}
	return r
}

// ConvertFile dispatches a local file using its own extension.
func (r *Registry) ConvertFile(ctx context.Context, path string, opts *domain.Options) (*domain.ConversionResult, error) {
	return r.Dispatch(ctx, path, nil, opts)
}

// ConvertReader spools a stream to a scratch file and dispatches it under
// the declared extension. The scratch file is removed on every exit path.
func (r *Registry) ConvertReader(ctx context.Context, src io.Reader, ext string, opts *domain.Options) (*domain.ConversionResult, error) {
	ext = normalizeExt(ext)
	path := filepath.Join(os.TempDir(), "docmark-"+uuid.NewString()+ext)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	defer os.Remove(path)

	_, err = io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("spool stream: %w", err)
	}

	return r.Dispatch(ctx, path, []string{ext}, opts)
}

// ConvertURL downloads a remote source to a scratch file and dispatches it.
// The candidate extension comes from the URL path, falling back to .html for
// pages; the original URL rides along so site-specific converters can claim
// it. The scratch file is removed on every exit path.
func (r *Registry) ConvertURL(ctx context.Context, rawURL string, opts *domain.Options) (*domain.ConversionResult, error) {
	var fetcher domain.Fetcher = fetch.NewClient(r.logger)
	if opts != nil && opts.Fetcher != nil {
		fetcher = opts.Fetcher
	}

	body, err := fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}

	ext := urlExtension(rawURL)
	path := filepath.Join(os.TempDir(), "docmark-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	defer os.Remove(path)

	urlOpts := opts.WithDispatcher(r)
	urlOpts.SourceURL = rawURL
	if urlOpts.Fetcher == nil {
		urlOpts.Fetcher = fetcher
	}

	return r.Dispatch(ctx, path, []string{ext}, urlOpts)
}

// urlExtension picks the dispatch extension for a remote source: the URL
// path's extension when it has one, .html otherwise (pages).
func urlExtension(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(filepath.Ext(u.Path)); ext != "" {
			return ext
		}
	}
	return ".html"
}

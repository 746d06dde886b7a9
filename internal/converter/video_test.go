package converter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docmark/internal/domain"
)

const sampleWatchPage = `<html>
<head>
<title>Talk - YouTube</title>
<meta property="og:title" content="A Great Talk">
<meta name="description" content="Slides and demos.">
<meta name="keywords" content="go, talks">
<meta itemprop="interactionCount" content="12345">
</head>
<body></body>
</html>`

type stubFetcher struct {
	body []byte
	err  error
	urls []string
}

func (s *stubFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	return s.body, s.err
}

func TestVideoIDExtraction(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123"},
		{"https://m.youtube.com/watch?v=abc123", "abc123"},
		{"https://youtu.be/xyz789", "xyz789"},
		{"https://www.youtube.com/playlist?list=PL1", ""},
		{"https://example.com/watch?v=abc123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := youtubeVideoID(tt.url); got != tt.want {
			t.Errorf("youtubeVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestVideoPageDeclinesNonVideoSources(t *testing.T) {
	path := writeTestFile(t, "page.html", sampleWatchPage)
	c := NewVideoPageConverter()

	for _, src := range []string{"", "https://example.com/page"} {
		res, err := c.Convert(context.Background(), domain.ConversionRequest{
			Path: path, Extension: ".html", SourceURL: src,
		})
		if err != nil || res != nil {
			t.Errorf("source %q: expected decline, got res=%v err=%v", src, res, err)
		}
	}
}

func TestVideoPageMetadataAndTranscript(t *testing.T) {
	path := writeTestFile(t, "watch.html", sampleWatchPage)
	fetcher := &stubFetcher{body: []byte(`<transcript><text>hello</text><text>again</text></transcript>`)}

	res, err := NewVideoPageConverter().Convert(context.Background(), domain.ConversionRequest{
		Path: path, Extension: ".html",
		SourceURL: "https://www.youtube.com/watch?v=abc123",
		Options:   &domain.Options{Fetcher: fetcher},
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Title == nil || *res.Title != "A Great Talk" {
		t.Errorf("got title %v, want og:title", res.Title)
	}
	for _, want := range []string{
		"# A Great Talk",
		"Description: Slides and demos.",
		"Keywords: go, talks",
		"Views: 12345",
		"### Transcript",
		"hello again",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in %q", want, res.Markdown)
		}
	}

	if len(fetcher.urls) != 1 || !strings.Contains(fetcher.urls[0], "v=abc123") {
		t.Errorf("unexpected transcript lookups: %v", fetcher.urls)
	}
}

func TestVideoPageTranscriptFailureDegradesToPlaceholder(t *testing.T) {
	path := writeTestFile(t, "watch.html", sampleWatchPage)

	for name, fetcher := range map[string]domain.Fetcher{
		"fetch error": &stubFetcher{err: errors.New("teapot")},
		"empty body":  &stubFetcher{},
		"not xml":     &stubFetcher{body: []byte("nope")},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := NewVideoPageConverter().Convert(context.Background(), domain.ConversionRequest{
				Path: path, Extension: ".html",
				SourceURL: "https://www.youtube.com/watch?v=abc123",
				Options:   &domain.Options{Fetcher: fetcher},
			})
			if err != nil {
				t.Fatalf("transcript failure must not abort conversion: %v", err)
			}
			if !strings.Contains(res.Markdown, "[transcript unavailable]") {
				t.Errorf("missing placeholder: %q", res.Markdown)
			}
		})
	}
}

func TestVideoPageWithoutFetcherUsesPlaceholder(t *testing.T) {
	path := writeTestFile(t, "watch.html", sampleWatchPage)
	res, err := NewVideoPageConverter().Convert(context.Background(), domain.ConversionRequest{
		Path: path, Extension: ".html",
		SourceURL: "https://youtu.be/xyz789",
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.Markdown, "[transcript unavailable]") {
		t.Errorf("missing placeholder: %q", res.Markdown)
	}
}

package converter

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docmark/internal/domain"
)

// archiveConverter expands container files and re-dispatches every extracted
// entry through the converter set minus itself. The self-exclusion keeps
// nested containers of the same format unconverted instead of recursing.
//
// Failure policy mirrors batch-pipeline needs: extraction failure and a
// missing converter set become synthetic textual results, and per-entry
// failures are skipped, so a bad archive never throws past the dispatcher.
type archiveConverter struct {
	priority int
	logger   *slog.Logger
}

// NewArchiveConverter creates the zip container expander.
func NewArchiveConverter(logger *slog.Logger) domain.Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &archiveConverter{priority: 40, logger: logger}
}

func (c *archiveConverter) Name() string  { return "archive" }
func (c *archiveConverter) Priority() int { return c.priority }

func (c *archiveConverter) CanHandle(ext string) bool {
	return ext == ".zip"
}

func (c *archiveConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	name := filepath.Base(req.Path)

	if req.Options == nil || req.Options.Dispatcher == nil {
		return &domain.ConversionResult{
			Markdown: fmt.Sprintf("[ERROR] Cannot process archive %s: no converters available", name),
		}, nil
	}
	sub := req.Options.Dispatcher.Without(c.Name())
	subOpts := req.Options.WithDispatcher(sub)
	subOpts.SourceURL = "" // entries are local files, not the remote source

	scratch, err := os.MkdirTemp("", "docmark-archive-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := extractZip(req.Path, scratch); err != nil {
		return &domain.ConversionResult{
			Markdown: fmt.Sprintf("[ERROR] Failed to extract archive %s: %v", name, err),
		}, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Content from the zip file `%s`:\n", name))

	walkErr := filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(scratch, path)
		if err != nil {
			return err
		}

		res, err := sub.Dispatch(ctx, path, nil, subOpts)
		if err != nil {
			// Unconvertible or failing entries are skipped, not fatal.
			if !errors.Is(err, domain.ErrUnsupportedFormat) {
				c.logger.Warn("archive entry failed", "archive", name, "entry", rel, "error", err)
			}
			return nil
		}
		sb.WriteString(fmt.Sprintf("\n## File: %s\n\n%s\n", filepath.ToSlash(rel), res.Markdown))
		return nil
	})
	if walkErr != nil {
		return &domain.ConversionResult{
			Markdown: fmt.Sprintf("[ERROR] Failed to read extracted archive %s: %v", name, walkErr),
		}, nil
	}

	title := filenameTitle(req.Path)
	return &domain.ConversionResult{
		Title:    &title,
		Markdown: strings.TrimSpace(sb.String()),
	}, nil
}

// extractZip unpacks archivePath under dest, refusing entries that would
// escape it.
func extractZip(archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target := filepath.Join(dest, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("entry %q escapes extraction directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeZipEntry(entry, target); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}
	return nil
}

func writeZipEntry(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

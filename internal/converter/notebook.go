package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"docmark/internal/domain"
)

// notebookConverter renders Jupyter notebooks: markdown cells pass through
// verbatim, code cells become fenced blocks tagged with the notebook's
// kernel language.
type notebookConverter struct {
	priority int
}

// NewNotebookConverter creates the .ipynb converter.
func NewNotebookConverter() domain.Converter {
	return &notebookConverter{priority: 20}
}

func (c *notebookConverter) Name() string  { return "notebook" }
func (c *notebookConverter) Priority() int { return c.priority }

func (c *notebookConverter) CanHandle(ext string) bool {
	return ext == ".ipynb"
}

type notebook struct {
	Cells []struct {
		CellType string          `json:"cell_type"`
		Source   json.RawMessage `json:"source"`
	} `json:"cells"`
	Metadata struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

func (c *notebookConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	content, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}

	var nb notebook
	if err := json.Unmarshal(content, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook %s: %w", req.Path, err)
	}

	lang := nb.Metadata.LanguageInfo.Name
	var sb strings.Builder
	var title *string

	for _, cell := range nb.Cells {
		source := cellSource(cell.Source)
		switch cell.CellType {
		case "markdown":
			if title == nil {
				if t := firstHeading(source); t != "" {
					title = &t
				}
			}
			sb.WriteString(strings.TrimRight(source, "\n") + "\n\n")
		case "code":
			if strings.TrimSpace(source) == "" {
				continue
			}
			sb.WriteString("```" + lang + "\n" + strings.TrimRight(source, "\n") + "\n```\n\n")
		}
	}

	return &domain.ConversionResult{
		Title:    title,
		Markdown: strings.TrimSpace(sb.String()),
	}, nil
}

// cellSource handles both notebook source encodings: a list of lines or a
// single string.
func cellSource(raw json.RawMessage) string {
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

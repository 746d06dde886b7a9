package converter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"docmark/internal/domain"
)

// csvConverter renders delimited text as a GitHub pipe table.
type csvConverter struct {
	priority int
}

// NewCSVConverter creates the delimited-text converter (.csv and .tsv).
func NewCSVConverter() domain.Converter {
	return &csvConverter{priority: 20}
}

func (c *csvConverter) Name() string  { return "csv" }
func (c *csvConverter) Priority() int { return c.priority }

func (c *csvConverter) CanHandle(ext string) bool {
	return ext == ".csv" || ext == ".tsv"
}

func (c *csvConverter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if req.Extension == ".tsv" {
		reader.Comma = '\t'
	}
	// Ragged rows are common in the wild; pad instead of failing.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.Path, err)
	}
	if len(records) == 0 {
		return &domain.ConversionResult{Markdown: ""}, nil
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	var sb strings.Builder
	for i, rec := range records {
		cells := make([]string, width)
		for j := range cells {
			if j < len(rec) {
				cells[j] = escapeCell(rec[j])
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
		}
	}

	return &domain.ConversionResult{Markdown: strings.TrimSpace(sb.String())}, nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

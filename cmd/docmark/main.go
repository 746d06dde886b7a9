package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docmark/internal/config"
	"docmark/internal/convert"
	"docmark/internal/domain"
	"docmark/internal/fetch"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(os.Stderr, cfg)

	var (
		output       string
		keepImagesIn []string
		showTitle    bool
	)

	root := &cobra.Command{
		Use:   "docmark <path-or-url>...",
		Short: "Normalize documents, pages, feeds and archives into Markdown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &domain.Options{
				Fetcher:      fetch.NewClientWithPolicy(logger, cfg.FetchAttempts, cfg.FetchDelay, cfg.FetchTimeout),
				Capabilities: config.ProbeCapabilities(),
				KeepImagesIn: append(cfg.KeepImagesIn, keepImagesIn...),
				Logger:       logger,
			}
			registry := convert.NewStandardRegistry(logger, opts)

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			ctx := context.Background()
			for _, arg := range args {
				res, err := convertOne(ctx, registry, arg, opts)
				if err != nil {
					return err
				}
				if showTitle && res.Title != nil {
					fmt.Fprintf(out, "# %s\n\n", *res.Title)
				}
				fmt.Fprintln(out, res.Markdown)
			}
			return nil
		},
	}

	root.Flags().StringVarP(&output, "output", "o", "", "write markdown to file instead of stdout")
	root.Flags().StringSliceVar(&keepImagesIn, "keep-images", nil, "parent tags whose inline images are kept (e.g. figure,a)")
	root.Flags().BoolVar(&showTitle, "title", false, "prepend the extracted document title as a heading")

	if err := root.Execute(); err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

func convertOne(ctx context.Context, registry *convert.Registry, source string, opts *domain.Options) (*domain.ConversionResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return registry.ConvertURL(ctx, source, opts)
	}
	return registry.ConvertFile(ctx, source, opts)
}

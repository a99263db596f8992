package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/rafaelqm/imovia/internal/common"
	"github.com/rafaelqm/imovia/internal/export"
	"github.com/rafaelqm/imovia/internal/gallery"
	"github.com/rafaelqm/imovia/internal/ingest"
	"github.com/rafaelqm/imovia/internal/llm"
	"github.com/rafaelqm/imovia/internal/llm/gemini"
	"github.com/rafaelqm/imovia/internal/media"
	"github.com/rafaelqm/imovia/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	var (
		inmem     = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir       = flag.String("dir", "", "directory of photos to ingest (required)")
		out       = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		title     = flag.String("title", "", "listing title")
		url       = flag.String("url", "", "listing page to extract fields from (needs GEMINI_API_KEY)")
		watermark = flag.Bool("watermark", false, "apply the configured watermark to every photo")
		watch     = flag.Bool("watch", false, "keep running and ingest photos dropped into --dir (Ctrl-C to stop)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "listings.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()

	dbPath := cfg.Database.Path
	if *inmem {
		dbPath = ":memory:"
	}
	db, err := repository.Open(ctx, dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	listingsRepo := repository.NewListingRepository(db)
	jobsRepo := repository.NewDispatchJobRepository(db)

	// Ingest the photo directory into a gallery.
	pipeline := media.NewPipeline(logger)
	opts := media.Options{
		MaxDimension:   cfg.Media.MaxDimension,
		JPEGQuality:    cfg.Media.JPEGQuality,
		MaxConcurrency: cfg.Media.MaxConcurrency,
	}
	if *watermark && cfg.Media.WatermarkText != "" {
		opts.Watermark = &media.WatermarkConfig{
			Text:    cfg.Media.WatermarkText,
			Opacity: cfg.Media.Opacity,
		}
	}

	ingestor := ingest.NewIngestor(pipeline, logger)
	logger.Info("starting ingestion", "dir", *dir)
	galleryURIs, stats, err := ingestor.IngestDirectory(ctx, *dir, opts)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"ingested", stats.Ingested,
		"failed", stats.Failed)

	// Listing fields: extracted from the URL when given, manual otherwise.
	fields := llm.ListingFields{Title: *title}
	if *url != "" {
		if cfg.Gemini.APIKey == "" {
			logger.Warn("GEMINI_API_KEY not configured, skipping URL extraction")
		} else {
			client := gemini.NewClient(gemini.Config{
				APIKey:       cfg.Gemini.APIKey,
				BaseURL:      cfg.Gemini.BaseURL,
				TextModel:    cfg.Gemini.TextModel,
				ImageModel:   cfg.Gemini.ImageModel,
				Timeout:      cfg.Gemini.Timeout,
				MaxAttempts:  cfg.Gemini.MaxAttempts,
				InitialDelay: cfg.Gemini.RetryDelay,
			}, logger, nil)

			payload, err := client.ExtractFromURL(ctx, *url)
			if err != nil {
				logger.Error("failed to extract listing fields", "url", *url, "error", err)
				os.Exit(1)
			}
			extracted, droppedKeys := llm.SanitizeListingPayload(payload)
			if len(droppedKeys) > 0 {
				logger.Warn("dropped malformed fields", "keys", droppedKeys)
			}
			if *title != "" {
				extracted.Title = *title
			}
			fields = extracted
		}
	}

	// Gallery keeps selection order; the first ingested photo is the cover.
	gal := gallery.New(galleryURIs...)
	if cover, ok := gal.Cover(); ok {
		logger.Info("gallery ready", "photos", gal.Len(), "cover_bytes", len(cover))
	}

	saved, err := listingsRepo.Save(ctx, repository.NewListing(fields, gal.Items()))
	if err != nil {
		logger.Error("failed to save listing", "error", err)
		os.Exit(1)
	}
	logger.Info("listing saved", "id", saved.ID, "photos", len(saved.Gallery))

	// Drop-folder mode: keep appending photos dropped into the directory
	// until interrupted, then export as usual.
	if *watch {
		evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:    []string{*dir},
			Debounce: 500 * time.Millisecond,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("failed to start watcher", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("watching for new photos", "dir", *dir)

		for evCh != nil || errCh != nil {
			select {
			case p, ok := <-evCh:
				if !ok {
					evCh = nil
					continue
				}
				data, readErr := os.ReadFile(p)
				if readErr != nil {
					logger.Warn("failed to read dropped photo", "path", p, "error", readErr)
					continue
				}
				uri, ingErr := pipeline.IngestOne(ctx, data, opts)
				if ingErr != nil {
					logger.Warn("skipped dropped photo", "path", p, "error", ingErr)
					continue
				}
				gal.Append(uri)
				saved.Gallery = gal.Items()
				if saved, err = listingsRepo.Save(ctx, saved); err != nil {
					logger.Error("failed to update listing", "error", err)
					continue
				}
				logger.Info("photo added", "path", p, "photos", gal.Len())
			case werr, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				logger.Warn("watcher error", "error", werr)
			}
		}
		logger.Info("watch stopped", "photos", gal.Len())
	}

	// Export the portfolio. The interrupt that ends watch mode cancels ctx,
	// so the final export runs on its own context.
	exportCtx := ctx
	if ctx.Err() != nil {
		exportCtx = context.Background()
	}
	exportService := export.NewService(listingsRepo, jobsRepo, logger)
	xlsxBytes, err := exportService.ExportListingsXLSX(exportCtx)
	if err != nil {
		logger.Error("failed to export listings", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"listing_id", saved.ID,
		"photos", len(saved.Gallery),
		"output_file", *out)

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Listing: %s\n", saved.ID)
	fmt.Printf("- Photos ingested: %d\n", len(saved.Gallery))
	fmt.Printf("- Output: %s\n", *out)
}

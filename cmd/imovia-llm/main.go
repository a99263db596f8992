package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rafaelqm/imovia/constants"
	"github.com/rafaelqm/imovia/internal/common"
	"github.com/rafaelqm/imovia/internal/llm"
	"github.com/rafaelqm/imovia/internal/llm/gemini"
)

const usage = `usage:
  imovia-llm suggest <prompt>
  imovia-llm extract <url>
  imovia-llm edit-image <photo> <instruction> [out]`

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	_ = godotenv.Load()

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Internal packages log through slog; keep their stream on stderr so
	// stdout stays parseable command output.
	internalLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	client := gemini.NewClient(gemini.Config{
		APIKey:       cfg.Gemini.APIKey,
		BaseURL:      cfg.Gemini.BaseURL,
		TextModel:    cfg.Gemini.TextModel,
		ImageModel:   cfg.Gemini.ImageModel,
		Timeout:      cfg.Gemini.Timeout,
		MaxAttempts:  cfg.Gemini.MaxAttempts,
		InitialDelay: cfg.Gemini.RetryDelay,
	}, internalLogger, nil)

	switch os.Args[1] {
	case "suggest":
		fmt.Println(client.Suggest(ctx, os.Args[2]))

	case "extract":
		payload, err := client.ExtractFromURL(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("extract failed: %v", err)
		}
		fields, dropped := llm.SanitizeListingPayload(payload)
		if len(dropped) > 0 {
			log.Warnw("dropped malformed fields", "keys", dropped)
		}
		out, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			log.Fatalf("encode result: %v", err)
		}
		fmt.Println(string(out))

	case "edit-image":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		photo, instruction := os.Args[2], os.Args[3]
		outPath := photo[:len(photo)-len(filepath.Ext(photo))] + ".edited.jpg"
		if len(os.Args) > 4 {
			outPath = os.Args[4]
		}

		data, err := os.ReadFile(photo)
		if err != nil {
			log.Fatalf("read photo: %v", err)
		}
		uri := llm.FormatDataURI(mimeForPath(photo), data)

		edited, err := client.EditImage(ctx, uri, instruction)
		if err != nil {
			log.Fatalf("edit failed: %v", err)
		}
		_, bytes, err := llm.ParseDataURI(edited)
		if err != nil {
			log.Fatalf("unexpected model output: %v", err)
		}
		if err := os.WriteFile(outPath, bytes, 0644); err != nil {
			log.Fatalf("write result: %v", err)
		}
		fmt.Printf("Edited photo written to %s\n", outPath)

	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func mimeForPath(path string) string {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

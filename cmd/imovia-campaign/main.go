package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rafaelqm/imovia/internal/common"
	"github.com/rafaelqm/imovia/internal/dispatch"
	"github.com/rafaelqm/imovia/internal/export"
	"github.com/rafaelqm/imovia/internal/repository"
)

// logSender is a stand-in delivery channel that writes sends to the log.
// Real channel integrations plug in behind dispatch.Sender.
type logSender struct {
	logger *slog.Logger
}

func (s *logSender) Ready() bool { return true }

func (s *logSender) Send(_ context.Context, recipient, message string) error {
	s.logger.Info("campaign.send", "recipient", recipient, "chars", len(message))
	return nil
}

func main() {
	_ = godotenv.Load()

	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		recipients = flag.String("recipients", "", "file with one recipient per line (required)")
		message    = flag.String("message", "", "campaign message (required)")
		out        = flag.String("out", "", "write a campaign summary XLSX to this path")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *recipients == "" || *message == "" {
		fmt.Fprintln(os.Stderr, "Error: --recipients and --message are required")
		os.Exit(1)
	}

	list, err := readRecipients(*recipients)
	if err != nil {
		logger.Error("failed to read recipients", "path", *recipients, "error", err)
		os.Exit(1)
	}

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

	jobsRepo := repository.NewDispatchJobRepository(db)

	d := dispatch.NewDispatcher(
		&logSender{logger: logger},
		logger,
		dispatch.WithSendInterval(cfg.Dispatch.SendInterval),
	)
	job := dispatch.NewJob(list, *message)

	events, err := d.Dispatch(ctx, job)
	if err != nil {
		logger.Error("dispatch refused", "error", err)
		os.Exit(1)
	}
	for ev := range events {
		if ev.Terminal {
			fmt.Printf("Campaign %s: %s (%d/%d succeeded)\n",
				ev.JobID, ev.Status, ev.Succeeded, ev.Attempted)
			continue
		}
		fmt.Printf("  %3d%% (%d/%d)\n", ev.Progress, ev.Completed, ev.Total)
	}

	if err := jobsRepo.RecordSummary(ctx, job); err != nil {
		logger.Error("failed to record campaign summary", "error", err)
		os.Exit(1)
	}

	if *out != "" {
		listingsRepo := repository.NewListingRepository(db)
		svc := export.NewService(listingsRepo, jobsRepo, logger)
		xlsxBytes, err := svc.ExportCampaignsXLSX(ctx)
		if err != nil {
			logger.Error("failed to export campaigns", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Summary written to %s\n", *out)
	}
}

func readRecipients(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

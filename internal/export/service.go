package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rafaelqm/imovia/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	listings *repository.ListingRepository
	jobs     *repository.DispatchJobRepository
	logger   *slog.Logger
}

func NewService(listings *repository.ListingRepository, jobs *repository.DispatchJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{listings: listings, jobs: jobs, logger: logger}
}

// ListingHeaders is the first row of the portfolio sheet, in column order.
var ListingHeaders = []string{
	"Title",
	"Type",
	"Price",
	"Address",
	"Area (m²)",
	"Bedrooms",
	"Bathrooms",
	"Status",
	"Photos",
	"Description",
	"Updated",
}

// ExportListingsXLSX returns the full listing portfolio as an XLSX workbook.
func (s *Service) ExportListingsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Listings"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range ListingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, l := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, l.Title)
		write(2, l.Type)
		write(3, l.Price)
		write(4, l.Address)
		write(5, l.Area)
		write(6, l.Bedrooms)
		write(7, l.Bathrooms)
		write(8, l.Status)
		write(9, len(l.Gallery))
		write(10, truncate(l.Description, 140))
		if !l.UpdatedAt.IsZero() {
			write(11, l.UpdatedAt.Format("2006-01-02"))
		} else {
			write(11, "")
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // title
	_ = f.SetColWidth(sheet, "B", "B", 14) // type
	_ = f.SetColWidth(sheet, "C", "C", 14) // price
	_ = f.SetColWidth(sheet, "D", "D", 40) // address
	_ = f.SetColWidth(sheet, "E", "G", 10) // area, rooms
	_ = f.SetColWidth(sheet, "H", "I", 10) // status, photos
	_ = f.SetColWidth(sheet, "J", "J", 48) // description
	_ = f.SetColWidth(sheet, "K", "K", 12) // updated

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.listings.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// CampaignHeaders is the first row of the campaign summary sheet.
var CampaignHeaders = []string{
	"Job ID",
	"Message",
	"Status",
	"Attempted",
	"Succeeded",
	"Started",
	"Finished",
}

// ExportCampaignsXLSX returns recorded dispatch summaries as an XLSX workbook.
func (s *Service) ExportCampaignsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.jobs.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("query dispatch jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Campaigns"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range CampaignHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, j := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, j.ID)
		write(2, truncate(j.Message, 140))
		write(3, string(j.Status))
		write(4, j.Attempted)
		write(5, j.Succeeded)
		write(6, j.StartedAt.Format("2006-01-02 15:04"))
		write(7, j.FinishedAt.Format("2006-01-02 15:04"))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // uuid
	_ = f.SetColWidth(sheet, "B", "B", 48) // message
	_ = f.SetColWidth(sheet, "C", "E", 12) // status, counts
	_ = f.SetColWidth(sheet, "F", "G", 18) // timestamps

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.campaigns.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate caps s at n runes, never splitting a multi-byte character
// (descriptions carry "m²" and accented Portuguese).
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

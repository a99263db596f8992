package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rafaelqm/imovia/constants"
	"github.com/rafaelqm/imovia/internal/media"
)

type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Ingested uint32
	Failed   uint32
}

// ScanDirectory walks root in lexical order and returns the image file paths
// found, skipping hidden entries. Lexical order is the selection order the
// gallery preserves.
func ScanDirectory(root string, exts map[string]struct{}) ([]string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if exts == nil {
		exts = constants.AllowedImageExtensions
	}

	var paths []string
	var stats DirStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !allowed(path, exts) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, err
	}
	return paths, stats, nil
}

// Ingestor reads scanned files and pushes them through the media pipeline.
type Ingestor struct {
	pipeline *media.Pipeline
	logger   *slog.Logger
}

func NewIngestor(pipeline *media.Pipeline, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{pipeline: pipeline, logger: logger}
}

// IngestDirectory scans root and returns the transformed gallery payloads in
// scan order. Unreadable and undecodable files are dropped, never fatal.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string, opts media.Options) ([]string, DirStats, error) {
	paths, stats, err := ScanDirectory(root, nil)
	if err != nil {
		return nil, stats, err
	}

	files := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			i.logger.Warn("ingest.read.failed", "path", p, "error", readErr)
			stats.Failed++
			continue
		}
		files = append(files, data)
	}

	uris := i.pipeline.IngestAll(ctx, files, opts)
	stats.Ingested = uint32(len(uris))
	stats.Failed += uint32(len(files) - len(uris))

	i.logger.Info("ingest.dir.done",
		"root", root, "matched", stats.Matched, "ingested", stats.Ingested, "failed", stats.Failed,
	)
	return uris, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// Package media is the client-side image ingestion pipeline: decode, bounded
// resize, optional watermark, lossy re-encode. Results leave as data URIs
// ready for the gallery and the persistence collaborator.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"sync/atomic"

	// Decoders for the formats photo uploads actually arrive in.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"

	"github.com/rafaelqm/imovia/internal/common"
	"github.com/rafaelqm/imovia/internal/llm"
)

// WatermarkConfig describes the optional branding overlay.
type WatermarkConfig struct {
	Text    string
	Opacity float64 // 0..1
}

// Options configure one ingestion batch.
type Options struct {
	MaxDimension   int              // longest-side bound; default 1200
	JPEGQuality    int              // 1..100; default 60
	MaxConcurrency int              // parallel ingestions; default 4
	Watermark      *WatermarkConfig // nil: no overlay, pixels untouched past resize
}

func (o Options) normalized() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = 1200
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = 60
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 4
	}
	return o
}

type Pipeline struct {
	logger *slog.Logger
	busy   atomic.Int64
}

func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Busy reports whether any ingestion in any batch is still outstanding.
func (p *Pipeline) Busy() bool {
	return p.busy.Load() > 0
}

// IngestAll transforms every file in parallel (bounded by MaxConcurrency)
// and returns the surviving data URIs in the files' original order —
// completion order never determines position. Files that fail to decode are
// dropped from the output, so len(result) <= len(files); a bad file never
// aborts the batch.
func (p *Pipeline) IngestAll(ctx context.Context, files [][]byte, opts Options) []string {
	opts = opts.normalized()

	results := make([]string, len(files))
	ok := make([]bool, len(files))

	sem := make(chan struct{}, opts.MaxConcurrency)
	var wg sync.WaitGroup
	for i, data := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		p.busy.Add(1)
		sem <- struct{}{}
		go func(idx int, raw []byte) {
			defer wg.Done()
			defer p.busy.Add(-1)
			defer func() { <-sem }()

			uri, err := p.IngestOne(ctx, raw, opts)
			if err != nil {
				p.logger.Warn("media.ingest.skipped", "index", idx, "error", err)
				return
			}
			results[idx] = uri
			ok[idx] = true
		}(i, data)
	}
	wg.Wait()

	// Fan-in: compact while preserving selection order.
	out := make([]string, 0, len(files))
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	p.logger.Info("media.ingest.batch_done", "in", len(files), "out", len(out))
	return out
}

// IngestOne runs the full per-file stage sequence: decode, bound to
// MaxDimension preserving aspect ratio (never upscale), optional watermark,
// JPEG re-encode at the configured quality.
func (p *Pipeline) IngestOne(ctx context.Context, data []byte, opts Options) (string, error) {
	opts = opts.normalized()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecodeFailure, err)
	}

	bitmap := resizeToFit(src, opts.MaxDimension)

	if opts.Watermark != nil && opts.Watermark.Text != "" {
		if err := applyWatermark(bitmap, *opts.Watermark); err != nil {
			return "", fmt.Errorf("watermark: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, bitmap, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return "", fmt.Errorf("jpeg encode: %w", err)
	}
	return llm.FormatDataURI("image/jpeg", buf.Bytes()), nil
}

// resizeToFit returns an RGBA bitmap bounded by max on its longer side,
// preserving aspect ratio. Images already within bounds are copied, never
// upscaled.
func resizeToFit(src image.Image, max int) *image.RGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	tw, th := fitWithin(w, h, max)

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	if tw == w && th == h {
		xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// fitWithin computes target dimensions so the longer side equals max when
// either side exceeds it; the shorter side scales proportionally.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		return max, (h*max + w/2) / w
	}
	return (w*max + h/2) / h, max
}

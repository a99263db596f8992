package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelqm/imovia/internal/llm"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeURI(t *testing.T, uri string) image.Image {
	t.Helper()
	mt, data, err := llm.ParseDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mt)
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestIngestOneResizesToBound(t *testing.T) {
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	in := pngBytes(t, 3000, 1500, color.NRGBA{R: 200, G: 30, B: 30, A: 255})

	uri, err := p.IngestOne(context.Background(), in, Options{})
	require.NoError(t, err)

	out := decodeURI(t, uri)
	assert.Equal(t, 1200, out.Bounds().Dx())
	assert.Equal(t, 600, out.Bounds().Dy())
}

func TestIngestOneNeverUpscales(t *testing.T) {
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	in := pngBytes(t, 800, 600, color.NRGBA{R: 30, G: 30, B: 200, A: 255})

	uri, err := p.IngestOne(context.Background(), in, Options{})
	require.NoError(t, err)

	out := decodeURI(t, uri)
	assert.Equal(t, 800, out.Bounds().Dx())
	assert.Equal(t, 600, out.Bounds().Dy())
}

func TestIngestOneRejectsGarbage(t *testing.T) {
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := p.IngestOne(context.Background(), []byte("not an image"), Options{})
	assert.Error(t, err)
}

func TestIngestAllDropsBadFilesKeepsOrder(t *testing.T) {
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	files := [][]byte{
		pngBytes(t, 100, 50, color.NRGBA{R: 255, A: 255}),
		[]byte("corrupt"),
		pngBytes(t, 60, 80, color.NRGBA{B: 255, A: 255}),
	}

	out := p.IngestAll(context.Background(), files, Options{MaxConcurrency: 3})
	require.Len(t, out, 2)

	first := decodeURI(t, out[0])
	assert.Equal(t, 100, first.Bounds().Dx())
	assert.Equal(t, 50, first.Bounds().Dy())

	second := decodeURI(t, out[1])
	assert.Equal(t, 60, second.Bounds().Dx())
	assert.Equal(t, 80, second.Bounds().Dy())

	assert.False(t, p.Busy())
}

func TestWatermarkChangesBottomRightOnly(t *testing.T) {
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	in := pngBytes(t, 400, 300, color.NRGBA{R: 120, G: 120, B: 120, A: 255})

	plain, err := p.IngestOne(context.Background(), in, Options{})
	require.NoError(t, err)
	marked, err := p.IngestOne(context.Background(), in, Options{
		Watermark: &WatermarkConfig{Text: "Imovia", Opacity: 0.8},
	})
	require.NoError(t, err)

	assert.NotEqual(t, plain, marked)

	// Top-left quadrant is untouched by the overlay.
	pi := decodeURI(t, plain)
	mi := decodeURI(t, marked)
	for y := 0; y < 50; y += 10 {
		for x := 0; x < 50; x += 10 {
			assert.Equal(t, pi.At(x, y), mi.At(x, y))
		}
	}
}

func TestIngestOneDeterministic(t *testing.T) {
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	in := pngBytes(t, 640, 480, color.NRGBA{G: 180, A: 255})
	opts := Options{Watermark: &WatermarkConfig{Text: "Imovia", Opacity: 0.5}}

	a, err := p.IngestOne(context.Background(), in, opts)
	require.NoError(t, err)
	b, err := p.IngestOne(context.Background(), in, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{3000, 1500, 1200, 1200, 600},
		{1500, 3000, 1200, 600, 1200},
		{800, 600, 1200, 800, 600},
		{1200, 1200, 1200, 1200, 1200},
		{2400, 1000, 1200, 1200, 500},
		{1000, 2400, 1200, 500, 1200},
	}
	for _, tt := range tests {
		gw, gh := fitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, gw)
		assert.Equal(t, tt.wantH, gh)
	}
}

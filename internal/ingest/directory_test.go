package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelqm/imovia/internal/media"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestScanDirectoryFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "a.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("x"), 0o644))

	paths, stats, err := ScanDirectory(dir, nil)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, "a.png", filepath.Base(paths[0]))
	assert.Equal(t, "b.png", filepath.Base(paths[1]))
	assert.Equal(t, uint32(2), stats.Matched)
}

func TestScanDirectoryRequiresRoot(t *testing.T) {
	_, _, err := ScanDirectory("  ", nil)
	assert.Error(t, err)
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "01.png"), 20, 10)
	writePNG(t, filepath.Join(dir, "02.png"), 10, 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "03.png"), []byte("corrupt"), 0o644))

	ing := NewIngestor(media.NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil))), slog.New(slog.NewTextHandler(io.Discard, nil)))
	uris, stats, err := ing.IngestDirectory(context.Background(), dir, media.Options{})
	require.NoError(t, err)

	assert.Len(t, uris, 2)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(2), stats.Ingested)
	assert.Equal(t, uint32(1), stats.Failed)
}

func TestWatcherInitialScan(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "existing.png"), 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	select {
	case p := <-evCh:
		assert.Equal(t, "existing.png", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("no event for pre-existing file")
	}
}

func TestWatcherDebouncedBurst(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: time.Microsecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	// A rapid burst makes the timer callback overlap the event loop; every
	// file must still come through exactly once, with no lost updates.
	const n = 120
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("burst-%03d.jpg", i))
		require.NoError(t, os.WriteFile(name, []byte{0xff, 0xd8}, 0o644))
	}

	seen := map[string]struct{}{}
	deadline := time.After(10 * time.Second)
	for len(seen) < n {
		select {
		case p := <-evCh:
			seen[filepath.Base(p)] = struct{}{}
		case <-deadline:
			t.Fatalf("saw %d of %d files", len(seen), n)
		}
	}
}

func TestWatcherSeesNewFile(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{
		Roots:  []string{dir},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	writePNG(t, filepath.Join(dir, "dropped.jpg"), 8, 8)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case p := <-evCh:
			if filepath.Base(p) == "dropped.jpg" {
				return
			}
		case <-deadline:
			t.Fatal("no event for dropped file")
		}
	}
}

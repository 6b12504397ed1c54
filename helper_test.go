package poster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestFontStore builds a FontStore from the embedded Go fonts so tests
// need no font assets on disk.
func newTestFontStore(t *testing.T) *FontStore {
	t.Helper()
	fs, err := NewFontStoreFromBytes(goregular.TTF, gomedium.TTF, gobold.TTF)
	if err != nil {
		t.Fatalf("failed to build test font store: %v", err)
	}
	return fs
}

// newTestAssets creates a DirCache in a temp dir, optionally seeded with a
// logo asset.
func newTestAssets(t *testing.T, withLogo bool) *DirCache {
	t.Helper()
	dir := t.TempDir()
	if withLogo {
		logo := pngBytes(t, solidImage(90, 60, color.NRGBA{R: 0, G: 51, B: 153, A: 255}))
		if err := os.WriteFile(filepath.Join(dir, "logo.png"), logo, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "icons"), 0o755); err != nil {
		t.Fatal(err)
	}
	icon := pngBytes(t, solidImage(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	for _, name := range []string{"clock.png", "pin.png"} {
		if err := os.WriteFile(filepath.Join(dir, "icons", name), icon, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := NewDirCache(dir, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func solidImage(w, h int, col color.NRGBA) image.Image {
	return imaging.New(w, h, col)
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newCheckerImage builds a high-contrast checkerboard, perceptually as far
// from a solid color as an image gets.
func newCheckerImage(t *testing.T) *Image {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.NRGBA{A: 255}
			if (x/8+y/8)%2 == 0 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	i, err := newImageFromBuffer(bytes.NewBuffer(pngBytes(t, img)))
	if err != nil {
		t.Fatal(err)
	}
	return i
}

func dummyPNG(t *testing.T) *bytes.Buffer {
	t.Helper()
	return bytes.NewBuffer(pngBytes(t, solidImage(64, 64, color.NRGBA{R: 200, G: 30, B: 30, A: 255})))
}

// runeMeasurer is a deterministic width oracle for fitter tests: every rune
// is sizePt/2 wide.
type runeMeasurer struct{}

func (runeMeasurer) Width(text string, sizePt int) (int, error) {
	return utf8.RuneCountInString(text) * sizePt / 2, nil
}

func clearCache() {
	globalCache = &cache{}
}

package poster

import (
	"image"
	"image/color"
	"testing"
)

func TestNewQRImage(t *testing.T) {
	qr, err := newQRImage("https://lu.ma/EXATEC-Alemania", 110)
	if err != nil {
		t.Fatal(err)
	}
	if b := qr.Bounds(); b.Dx() != 110 || b.Dy() != 110 {
		t.Errorf("QR bounds %v, want 110x110", b)
	}
}

func TestNewQRImageEmptyURL(t *testing.T) {
	if _, err := newQRImage("", 110); err == nil {
		t.Error("expected an error")
	}
}

func TestDrawRoundedBorder(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	gray := color.NRGBA{R: 120, G: 120, B: 120, A: 255}
	r := image.Rect(10, 10, 50, 50)
	drawRoundedBorder(dst, r, 8, gray)

	// Straight edge segments carry the border color.
	if got := dst.NRGBAAt(30, 10); got != gray {
		t.Errorf("top edge pixel %v, want %v", got, gray)
	}
	if got := dst.NRGBAAt(10, 30); got != gray {
		t.Errorf("left edge pixel %v, want %v", got, gray)
	}

	// The square corner itself stays empty, the arc passes inside it.
	if got := dst.NRGBAAt(10, 10); got == gray {
		t.Error("corner pixel must be cut by the rounding")
	}
}

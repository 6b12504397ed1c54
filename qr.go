package poster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/k1LoW/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// newQRImage generates a QR code for the URL at the given pixel size, with
// high error correction so the code stays scannable on printed posters.
func newQRImage(url string, size int) (_ image.Image, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := qrcode.Encode(url, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code for %s: %w", url, err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code PNG: %w", err)
	}
	return img, nil
}

// drawRoundedBorder strokes a thin border with rounded corners around r,
// the decorative frame the QR code gets in the footer.
func drawRoundedBorder(dst *image.NRGBA, r image.Rectangle, radius int, col color.NRGBA) {
	set := func(x, y int) {
		if image.Pt(x, y).In(dst.Bounds()) {
			dst.SetNRGBA(x, y, col)
		}
	}
	// straight edges, inset by the corner radius
	for x := r.Min.X + radius; x < r.Max.X-radius; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y-1)
	}
	for y := r.Min.Y + radius; y < r.Max.Y-radius; y++ {
		set(r.Min.X, y)
		set(r.Max.X-1, y)
	}
	// quarter arcs via the midpoint circle algorithm
	cx := []int{r.Min.X + radius, r.Max.X - 1 - radius, r.Min.X + radius, r.Max.X - 1 - radius}
	cy := []int{r.Min.Y + radius, r.Min.Y + radius, r.Max.Y - 1 - radius, r.Max.Y - 1 - radius}
	x, y, d := radius, 0, 1-radius
	for x >= y {
		set(cx[0]-x, cy[0]-y)
		set(cx[0]-y, cy[0]-x)
		set(cx[1]+x, cy[1]-y)
		set(cx[1]+y, cy[1]-x)
		set(cx[2]-x, cy[2]+y)
		set(cx[2]-y, cy[2]+x)
		set(cx[3]+x, cy[3]+y)
		set(cx[3]+y, cy[3]+x)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

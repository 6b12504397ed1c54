package poster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/k1LoW/errors"
)

// flatten composites the canvas over an opaque white background, removing
// any residual transparency. The output artifact is always fully opaque.
func flatten(canvas *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(canvas.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), canvas, canvas.Bounds().Min, draw.Over)
	return out
}

// encodePNG flattens and PNG-encodes the canvas. Encoding is deterministic:
// identical pixels produce identical bytes.
func encodePNG(canvas *image.NRGBA) (_ []byte, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	var buf bytes.Buffer
	if err := png.Encode(&buf, flatten(canvas)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the rendered poster to path.
func (r *RenderResult) WriteFile(path string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	return os.WriteFile(path, r.PNG, 0o644)
}

// WriteTo writes the rendered poster to w.
func (r *RenderResult) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.PNG)
	return int64(n), errors.WithStack(err)
}

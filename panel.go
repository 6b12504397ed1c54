package poster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// composeBackground builds the canvas the text is drawn onto. With a real
// background the image is stretched to canvas size, tinted dark blue for
// contrast and softened with a small blur. Without one the canvas is plain
// white and the tint is skipped.
//
// The panel rectangle, its border outline and the accent stripe along its
// top edge are drawn unconditionally, in that order. Later steps draw over
// earlier ones.
func composeBackground(bg image.Image, cfg LayoutConfig) *image.NRGBA {
	size := cfg.CanvasSize
	var canvas *image.NRGBA
	if bg != nil {
		canvas = imaging.Resize(bg, size, size, imaging.Lanczos)
		tint := image.NewUniform(cfg.TintColor)
		draw.Draw(canvas, canvas.Bounds(), tint, image.Point{}, draw.Over)
		if cfg.BlurRadius > 0 {
			canvas = imaging.Blur(canvas, cfg.BlurRadius)
		}
	} else {
		canvas = imaging.New(size, size, color.White)
	}

	panel := cfg.PanelRect()
	draw.Draw(canvas, panel, image.NewUniform(cfg.PanelColor), image.Point{}, draw.Over)
	drawBorder(canvas, panel, cfg.BorderWidth, cfg.BorderColor)

	stripe := image.Rect(panel.Min.X, panel.Min.Y, panel.Max.X, panel.Min.Y+cfg.StripeWidth)
	draw.Draw(canvas, stripe, image.NewUniform(cfg.AccentColor), image.Point{}, draw.Over)

	return canvas
}

// drawBorder strokes a rectangle outline of the given width just inside r.
func drawBorder(dst *image.NRGBA, r image.Rectangle, width int, col color.Color) {
	src := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Over)
	}
}

package poster

import (
	"image/color"
	"testing"
)

func TestComposeBackgroundFallback(t *testing.T) {
	cfg := DefaultLayout()
	canvas := composeBackground(nil, cfg)

	if got := canvas.Bounds(); got.Dx() != cfg.CanvasSize || got.Dy() != cfg.CanvasSize {
		t.Fatalf("canvas bounds %v, want %dx%d", got, cfg.CanvasSize, cfg.CanvasSize)
	}

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if got := canvas.NRGBAAt(5, 5); got != white {
		t.Errorf("fallback corner pixel %v, want white", got)
	}

	panel := cfg.PanelRect()
	center := panel.Min.Add(panel.Max).Div(2)
	if got := canvas.NRGBAAt(center.X, center.Y); got != cfg.PanelColor {
		t.Errorf("panel center pixel %v, want %v", got, cfg.PanelColor)
	}

	// The accent stripe is drawn after the border and owns the panel's top
	// rows.
	if got := canvas.NRGBAAt(panel.Min.X+panel.Dx()/2, panel.Min.Y+cfg.StripeWidth/2); got != cfg.AccentColor {
		t.Errorf("stripe pixel %v, want %v", got, cfg.AccentColor)
	}
}

func TestComposeBackgroundWithImage(t *testing.T) {
	cfg := DefaultLayout()
	red := color.NRGBA{R: 220, G: 30, B: 30, A: 255}
	canvas := composeBackground(solidImage(200, 100, red), cfg)

	if got := canvas.Bounds(); got.Dx() != cfg.CanvasSize || got.Dy() != cfg.CanvasSize {
		t.Fatalf("canvas bounds %v, want %dx%d", got, cfg.CanvasSize, cfg.CanvasSize)
	}

	// The tint must darken the raw background.
	got := canvas.NRGBAAt(20, 20)
	if got == red {
		t.Errorf("background pixel %v was not tinted", got)
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if got == white {
		t.Errorf("background pixel is white, the source image was dropped")
	}

	panel := cfg.PanelRect()
	center := panel.Min.Add(panel.Max).Div(2)
	if got := canvas.NRGBAAt(center.X, center.Y); got != cfg.PanelColor {
		t.Errorf("panel center pixel %v, want %v", got, cfg.PanelColor)
	}
}

func TestDrawBorder(t *testing.T) {
	cfg := DefaultLayout()
	canvas := composeBackground(nil, cfg)
	panel := cfg.PanelRect()

	// Just inside the left edge, below the stripe: a translucent white
	// border pixel over panel blue is lighter than the panel itself.
	probe := canvas.NRGBAAt(panel.Min.X, panel.Min.Y+cfg.StripeWidth+10)
	if probe == cfg.PanelColor {
		t.Errorf("border pixel %v equals the panel color, border missing", probe)
	}
	if probe.R <= cfg.PanelColor.R {
		t.Errorf("border pixel %v is not lighter than the panel", probe)
	}
}

package poster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/k1LoW/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LayoutConfig is the immutable geometry and palette of a poster. All values
// are fixed constants; nothing is derived from the event content at runtime.
type LayoutConfig struct {
	CanvasSize int

	PanelWidthFrac  float64
	PanelHeightFrac float64
	PanelTopFrac    float64

	TintColor   color.NRGBA
	PanelColor  color.NRGBA
	BorderColor color.NRGBA
	AccentColor color.NRGBA
	BrandColor  color.NRGBA
	ShadowColor color.NRGBA
	BorderWidth int
	StripeWidth int
	BlurRadius  float64

	DatetimeOffsetY int // below the panel's top edge
	VenueOffsetY    int // above the panel's bottom edge
	AddressGap      int // between the venue and address rows
	TitleMarginX    int
	TitleClearance  int // between the datetime/venue rows and the title block

	TitleStartSize     int
	TitleMinSize       int
	TitleSizeStep      int
	TitleSpacingFactor float64
	DatetimeSize       int
	VenueSize          int
	AddressSize        int

	IconSize int
	IconGap  int

	FooterHeight  int
	FooterPadding int
	LogoHeight    int
	CTASize       int
	QRSize        int
	QRBorderGap   int
}

// DefaultLayout returns the fixed 1080x1080 poster layout.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		CanvasSize: 1080,

		PanelWidthFrac:  0.82,
		PanelHeightFrac: 0.56,
		PanelTopFrac:    0.16,

		TintColor:   color.NRGBA{R: 0, G: 51, B: 153, A: 150},
		PanelColor:  color.NRGBA{R: 0, G: 82, B: 204, A: 255},
		BorderColor: color.NRGBA{R: 255, G: 255, B: 255, A: 120},
		AccentColor: color.NRGBA{R: 0, G: 153, B: 255, A: 255},
		BrandColor:  color.NRGBA{R: 0, G: 51, B: 153, A: 255},
		ShadowColor: color.NRGBA{R: 0, G: 22, B: 66, A: 170},
		BorderWidth: 2,
		StripeWidth: 8,
		BlurRadius:  2,

		DatetimeOffsetY: 80,
		VenueOffsetY:    120,
		AddressGap:      60,
		TitleMarginX:    60,
		TitleClearance:  48,

		TitleStartSize:     84,
		TitleMinSize:       40,
		TitleSizeStep:      4,
		TitleSpacingFactor: 0.25,
		DatetimeSize:       48,
		VenueSize:          44,
		AddressSize:        32,

		IconSize: 40,
		IconGap:  14,

		FooterHeight:  150,
		FooterPadding: 30,
		LogoHeight:    120,
		CTASize:       24,
		QRSize:        110,
		QRBorderGap:   6,
	}
}

// PanelRect returns the panel rectangle on the canvas.
func (c LayoutConfig) PanelRect() image.Rectangle {
	w := int(float64(c.CanvasSize) * c.PanelWidthFrac)
	h := int(float64(c.CanvasSize) * c.PanelHeightFrac)
	left := (c.CanvasSize - w) / 2
	top := int(float64(c.CanvasSize) * c.PanelTopFrac)
	return image.Rect(left, top, left+w, top+h)
}

// FooterRect returns the footer band rectangle.
func (c LayoutConfig) FooterRect() image.Rectangle {
	return image.Rect(0, c.CanvasSize-c.FooterHeight, c.CanvasSize, c.CanvasSize)
}

// DatetimeY is the vertical center of the datetime row.
func (c LayoutConfig) DatetimeY() int {
	return c.PanelRect().Min.Y + c.DatetimeOffsetY
}

// VenueY is the vertical center of the venue row.
func (c LayoutConfig) VenueY() int {
	return c.PanelRect().Max.Y - c.VenueOffsetY
}

// AddressY is the vertical center of the address row.
func (c LayoutConfig) AddressY() int {
	return c.VenueY() + c.AddressGap
}

// TitleBounds returns the bounding box available to the title block, between
// the datetime and venue rows.
func (c LayoutConfig) TitleBounds() image.Rectangle {
	p := c.PanelRect()
	top := c.DatetimeY() + c.TitleClearance
	bottom := c.VenueY() - c.TitleClearance
	return image.Rect(p.Min.X+c.TitleMarginX, top, p.Max.X-c.TitleMarginX, bottom)
}

// Validate checks the invariants the renderer relies on, most importantly
// that the panel lies fully inside the canvas.
func (c LayoutConfig) Validate() error {
	if c.CanvasSize <= 0 {
		return fmt.Errorf("invalid canvas size: %d", c.CanvasSize)
	}
	canvas := image.Rect(0, 0, c.CanvasSize, c.CanvasSize)
	if !c.PanelRect().In(canvas) {
		return fmt.Errorf("panel %v does not fit inside canvas %v", c.PanelRect(), canvas)
	}
	if c.FooterHeight <= 0 || c.FooterHeight >= c.CanvasSize {
		return fmt.Errorf("invalid footer height: %d", c.FooterHeight)
	}
	// image.Rect canonicalizes swapped coordinates, so check the raw edges
	// before building the rectangle.
	top := c.DatetimeY() + c.TitleClearance
	bottom := c.VenueY() - c.TitleClearance
	if bottom <= top {
		return fmt.Errorf("title bounds collapse: top %d, bottom %d", top, bottom)
	}
	p := c.PanelRect()
	if p.Max.X-c.TitleMarginX <= p.Min.X+c.TitleMarginX {
		return fmt.Errorf("title margins %d leave no width inside panel %v", c.TitleMarginX, p)
	}
	return nil
}

// shadowOffset is the drop shadow displacement for text drawn at sizePt.
func shadowOffset(sizePt int) int {
	o := int(math.Ceil(float64(sizePt) / 30))
	if o < 2 {
		return 2
	}
	return o
}

// textLayout draws all text rows onto the canvas.
type textLayout struct {
	cfg   LayoutConfig
	fonts *FontStore
	icons map[string]image.Image // nil or missing entries are skipped
}

// Draw renders the datetime row, the fitted title block and the venue and
// address rows. The title uses the size and lines chosen by the fitter.
func (l *textLayout) Draw(canvas *image.NRGBA, fit *FitResult, datetime, venue, address string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if err := l.drawDatetime(canvas, datetime); err != nil {
		return err
	}
	if err := l.drawTitle(canvas, fit); err != nil {
		return err
	}
	if err := l.drawRow(canvas, venue, FontSemiBold, l.cfg.VenueSize, l.cfg.VenueY(), true, l.icons["icon:pin"]); err != nil {
		return err
	}
	if err := l.drawRow(canvas, address, FontRegular, l.cfg.AddressSize, l.cfg.AddressY(), false, nil); err != nil {
		return err
	}
	return nil
}

// drawDatetime draws the "<time> | <date>" unit horizontally centered, with
// the clock icon when available.
func (l *textLayout) drawDatetime(canvas *image.NRGBA, datetime string) error {
	face, err := l.fonts.Face(FontSemiBold, l.cfg.DatetimeSize)
	if err != nil {
		return err
	}
	clock := l.icons["icon:clock"]

	textW := font.MeasureString(face, datetime).Ceil()
	total := textW
	if clock != nil {
		total += l.cfg.IconSize + l.cfg.IconGap
	}
	x := (l.cfg.CanvasSize - total) / 2
	y := l.cfg.DatetimeY()
	if clock != nil {
		pasteIcon(canvas, clock, x, y, l.cfg.IconSize)
		x += l.cfg.IconSize + l.cfg.IconGap
	}
	drawString(canvas, face, datetime, x, y, color.White)
	return nil
}

// drawTitle vertically centers the fitted title block inside the title
// bounds, drawing each line with a drop shadow for legibility over
// photographic backgrounds.
func (l *textLayout) drawTitle(canvas *image.NRGBA, fit *FitResult) error {
	face, err := l.fonts.Face(FontBold, fit.SizePt)
	if err != nil {
		return err
	}
	bounds := l.cfg.TitleBounds()
	spacing := fit.LineSpacing(l.cfg.TitleSpacingFactor)
	total := blockHeight(len(fit.Lines), fit.SizePt, l.cfg.TitleSpacingFactor)
	top := bounds.Min.Y + (bounds.Dy()-total)/2
	offset := shadowOffset(fit.SizePt)

	for i, line := range fit.Lines {
		cy := top + i*(fit.SizePt+spacing) + fit.SizePt/2
		w := font.MeasureString(face, line).Ceil()
		x := (l.cfg.CanvasSize - w) / 2
		drawString(canvas, face, line, x+offset, cy+offset, l.cfg.ShadowColor)
		drawString(canvas, face, line, x, cy, color.White)
	}
	return nil
}

func (l *textLayout) drawRow(canvas *image.NRGBA, text string, weight FontWeight, sizePt, y int, shadow bool, icon image.Image) error {
	if text == "" {
		return nil
	}
	face, err := l.fonts.Face(weight, sizePt)
	if err != nil {
		return err
	}
	textW := font.MeasureString(face, text).Ceil()
	total := textW
	if icon != nil {
		total += l.cfg.IconSize + l.cfg.IconGap
	}
	x := (l.cfg.CanvasSize - total) / 2
	if icon != nil {
		pasteIcon(canvas, icon, x, y, l.cfg.IconSize)
		x += l.cfg.IconSize + l.cfg.IconGap
	}
	if shadow {
		o := shadowOffset(sizePt)
		drawString(canvas, face, text, x+o, y+o, l.cfg.ShadowColor)
	}
	drawString(canvas, face, text, x, y, color.White)
	return nil
}

// drawString draws text with its left edge at x and its vertical center at y.
func drawString(dst *image.NRGBA, face font.Face, text string, x, y int, col color.Color) {
	m := face.Metrics()
	baseline := y + (m.Ascent.Ceil()-m.Descent.Ceil())/2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// pasteIcon pastes the icon resized to size, vertically centered at y.
func pasteIcon(dst *image.NRGBA, icon image.Image, x, y, size int) {
	resized := imaging.Resize(icon, size, size, imaging.Lanczos)
	r := image.Rect(x, y-size/2, x+size, y-size/2+size)
	draw.Draw(dst, r, resized, image.Point{}, draw.Over)
}

package poster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/k1LoW/errors"
)

// FooterError marks a recoverable footer failure. The poster is still
// produced; the footer band is simply left undecorated.
type FooterError struct {
	err error
}

func (e *FooterError) Error() string {
	return "footer skipped: " + e.err.Error()
}

func (e *FooterError) Unwrap() error {
	return e.err
}

// footerComposer renders the fixed white band at the bottom of the poster:
// logo, vertical separator, call-to-action and link text, and a QR code
// framed by a thin rounded border. All horizontal positions derive from
// measured asset and text widths plus fixed paddings, never from the title.
type footerComposer struct {
	cfg     LayoutConfig
	fonts   *FontStore
	assets  AssetCache
	cta     string
	link    string
	linkURL string
}

// Compose draws the footer onto the canvas. A missing logo asset returns a
// *FooterError and leaves the band plain white; any other failure is fatal
// to the footer but handled the same way by the caller.
func (f *footerComposer) Compose(ctx context.Context, canvas *image.NRGBA) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	band := f.cfg.FooterRect()
	draw.Draw(canvas, band, image.NewUniform(color.White), image.Point{}, draw.Src)

	logoBytes, err := f.assets.GetOrFetch(ctx, "logo")
	if err != nil {
		return &FooterError{err: err}
	}
	logo, _, err := image.Decode(bytes.NewReader(logoBytes))
	if err != nil {
		return &FooterError{err: err}
	}

	// logo, left-inset, height-normalized preserving aspect ratio
	resized := imaging.Resize(logo, 0, f.cfg.LogoHeight, imaging.Lanczos)
	logoY := band.Min.Y + (f.cfg.FooterHeight-f.cfg.LogoHeight)/2
	logoRect := image.Rect(f.cfg.FooterPadding, logoY, f.cfg.FooterPadding+resized.Bounds().Dx(), logoY+f.cfg.LogoHeight)
	draw.Draw(canvas, logoRect, resized, image.Point{}, draw.Over)

	// vertical separator after the logo
	sepX := logoRect.Max.X + f.cfg.FooterPadding
	sep := image.Rect(sepX, band.Min.Y+25, sepX+1, band.Max.Y-25)
	draw.Draw(canvas, sep, image.NewUniform(color.NRGBA{R: 200, G: 200, B: 200, A: 255}), image.Point{}, draw.Src)

	// CTA and link text stacked right of the separator
	ctaFace, err := f.fonts.Face(FontSemiBold, f.cfg.CTASize)
	if err != nil {
		return err
	}
	linkFace, err := f.fonts.Face(FontBold, f.cfg.CTASize)
	if err != nil {
		return err
	}
	textX := sepX + f.cfg.FooterPadding
	mid := band.Min.Y + f.cfg.FooterHeight/2
	drawString(canvas, ctaFace, f.cta, textX, mid-18, f.cfg.BrandColor)
	drawString(canvas, linkFace, f.link, textX, mid+18, f.cfg.AccentColor)

	// QR code, right-aligned with its rounded frame
	qr, err := newQRImage(f.linkURL, f.cfg.QRSize)
	if err != nil {
		return err
	}
	qrX := band.Max.X - f.cfg.FooterPadding - f.cfg.QRSize
	qrY := band.Min.Y + (f.cfg.FooterHeight-f.cfg.QRSize)/2
	qrRect := image.Rect(qrX, qrY, qrX+f.cfg.QRSize, qrY+f.cfg.QRSize)
	draw.Draw(canvas, qrRect, qr, image.Point{}, draw.Src)
	frame := qrRect.Inset(-f.cfg.QRBorderGap)
	drawRoundedBorder(canvas, frame, 8, color.NRGBA{R: 120, G: 120, B: 120, A: 255})

	return nil
}

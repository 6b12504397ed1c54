package poster

import (
	"context"
	"fmt"

	"github.com/k1LoW/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontWeight selects one of the bundled font weights. Each weight is backed
// by its own TTF asset; a loaded font is never mutated to switch weights.
type FontWeight int

const (
	FontRegular FontWeight = iota
	FontSemiBold
	FontBold
)

func (w FontWeight) String() string {
	switch w {
	case FontRegular:
		return "regular"
	case FontSemiBold:
		return "semibold"
	case FontBold:
		return "bold"
	default:
		return "unknown"
	}
}

// assetKey returns the asset store key for the weight's TTF file.
func (w FontWeight) assetKey() string {
	return "font:" + w.String()
}

// FontStore holds the parsed fonts for all weights. Faces are instantiated
// per (weight, size) request and are not shared between renders.
type FontStore struct {
	fonts map[FontWeight]*sfnt.Font
}

// NewFontStore loads and parses the TTF asset for every weight. Any missing
// or corrupt font file is fatal: a render cannot proceed without its fonts.
func NewFontStore(ctx context.Context, assets AssetCache) (_ *FontStore, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	s := &FontStore{fonts: map[FontWeight]*sfnt.Font{}}
	for _, w := range []FontWeight{FontRegular, FontSemiBold, FontBold} {
		b, err := assets.GetOrFetch(ctx, w.assetKey())
		if err != nil {
			return nil, fmt.Errorf("failed to load font asset %s: %w", w.assetKey(), err)
		}
		f, err := opentype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", w.assetKey(), err)
		}
		s.fonts[w] = f
	}
	return s, nil
}

// NewFontStoreFromBytes builds a FontStore from raw TTF data. Weights with
// nil data reuse the regular data.
func NewFontStoreFromBytes(regular, semiBold, bold []byte) (_ *FontStore, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if len(regular) == 0 {
		return nil, fmt.Errorf("regular font data is required")
	}
	s := &FontStore{fonts: map[FontWeight]*sfnt.Font{}}
	for w, b := range map[FontWeight][]byte{
		FontRegular:  regular,
		FontSemiBold: semiBold,
		FontBold:     bold,
	} {
		if len(b) == 0 {
			b = regular
		}
		f, err := opentype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", w, err)
		}
		s.fonts[w] = f
	}
	return s, nil
}

// Face creates a new font.Face for the weight at the given point size.
func (s *FontStore) Face(w FontWeight, sizePt int) (_ font.Face, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	f, ok := s.fonts[w]
	if !ok {
		return nil, fmt.Errorf("font weight %s is not loaded", w)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(sizePt),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face at %dpt: %w", w, sizePt, err)
	}
	return face, nil
}

// Width returns the rendered width of text at the given weight and size in
// pixels.
func (s *FontStore) Width(w FontWeight, text string, sizePt int) (int, error) {
	face, err := s.Face(w, sizePt)
	if err != nil {
		return 0, err
	}
	return font.MeasureString(face, text).Ceil(), nil
}

// Measurer is the width oracle used by the typography fitter.
type Measurer interface {
	Width(text string, sizePt int) (int, error)
}

type weightMeasurer struct {
	s *FontStore
	w FontWeight
}

func (m weightMeasurer) Width(text string, sizePt int) (int, error) {
	return m.s.Width(m.w, text, sizePt)
}

// Measurer returns a Measurer bound to a single weight.
func (s *FontStore) Measurer(w FontWeight) Measurer {
	return weightMeasurer{s: s, w: w}
}

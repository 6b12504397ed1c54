package poster

import (
	"fmt"
	"strings"

	"github.com/k1LoW/errors"
)

// FitResult is the outcome of fitting a multi-line title into a bounding box.
type FitResult struct {
	SizePt       int      `json:"size_pt"`
	Lines        []string `json:"lines"`
	WrapFallback bool     `json:"wrap_fallback"`
}

// LineSpacing returns the spacing between lines at the chosen size.
func (r *FitResult) LineSpacing(factor float64) int {
	return int(float64(r.SizePt) * factor)
}

// blockHeight is the total height of count lines at sizePt with spacing
// between lines but not after the last one.
func blockHeight(count, sizePt int, spacingFactor float64) int {
	if count == 0 {
		return 0
	}
	spacing := int(float64(sizePt) * spacingFactor)
	return count*(sizePt+spacing) - spacing
}

// Fit picks the largest size in [minSize, startSize], stepping down by
// sizeStep, at which every line fits boundWidth and the whole block fits
// boundHeight. The search stops at the first size that satisfies both
// constraints; it is not a global optimization.
//
// When no size fits, the lines are re-wrapped greedily at minSize: words are
// packed into lines until adding the next word would exceed boundWidth. A
// single word wider than boundWidth is placed alone on its own line and left
// overflowing rather than split or hyphenated.
func Fit(m Measurer, lines []string, boundWidth, boundHeight, startSize, minSize, sizeStep int, spacingFactor float64) (_ *FitResult, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if len(lines) == 0 {
		return nil, fmt.Errorf("no lines to fit")
	}
	if startSize < minSize {
		return nil, fmt.Errorf("invalid size range: start %d < min %d", startSize, minSize)
	}
	if sizeStep <= 0 {
		return nil, fmt.Errorf("invalid size step: %d", sizeStep)
	}

	for size := startSize; size >= minSize; size -= sizeStep {
		if blockHeight(len(lines), size, spacingFactor) > boundHeight {
			continue
		}
		fits, err := allLinesFit(m, lines, size, boundWidth)
		if err != nil {
			return nil, err
		}
		if fits {
			return &FitResult{SizePt: size, Lines: lines}, nil
		}
	}

	wrapped, err := wrapWords(m, lines, minSize, boundWidth)
	if err != nil {
		return nil, err
	}
	return &FitResult{SizePt: minSize, Lines: wrapped, WrapFallback: true}, nil
}

func allLinesFit(m Measurer, lines []string, sizePt, boundWidth int) (bool, error) {
	for _, line := range lines {
		w, err := m.Width(line, sizePt)
		if err != nil {
			return false, fmt.Errorf("failed to measure %q at %dpt: %w", line, sizePt, err)
		}
		if w > boundWidth {
			return false, nil
		}
	}
	return true, nil
}

// wrapWords concatenates all lines into one word sequence and greedily packs
// words into new lines measured at sizePt.
func wrapWords(m Measurer, lines []string, sizePt, boundWidth int) ([]string, error) {
	words := strings.Fields(strings.Join(lines, " "))
	var (
		wrapped []string
		current string
	)
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		w, err := m.Width(candidate, sizePt)
		if err != nil {
			return nil, fmt.Errorf("failed to measure %q at %dpt: %w", candidate, sizePt, err)
		}
		if w <= boundWidth || current == "" {
			// An overlong single word stays on its own line unsplit.
			current = candidate
			continue
		}
		wrapped = append(wrapped, current)
		current = word
	}
	if current != "" {
		wrapped = append(wrapped, current)
	}
	return wrapped, nil
}

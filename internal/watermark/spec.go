package watermark

import (
	"fmt"
	"image/color"
	"math"
)

// Spec describes one watermark request. It is a plain value; copies are
// independent.
type Spec struct {
	Text     string
	Color    color.RGBA // alpha is ignored, Opacity controls transparency
	Opacity  float64
	FontSize int
}

// Validate checks the fields needed for a visible watermark.
func (s Spec) Validate() error {
	if s.Text == "" {
		return ErrEmptyText
	}
	if math.IsNaN(s.Opacity) || s.Opacity <= 0 || s.Opacity > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidOpacity, s.Opacity)
	}
	if s.FontSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFontSize, s.FontSize)
	}
	return nil
}

// AlphaFromOpacity maps an opacity in [0,1] to an 8-bit alpha value as
// round(opacity*255), clamped to [0,255].
func AlphaFromOpacity(opacity float64) uint8 {
	if math.IsNaN(opacity) {
		return 0
	}
	a := math.Round(opacity * 255)
	switch {
	case a <= 0:
		return 0
	case a >= 255:
		return 255
	}
	return uint8(a)
}

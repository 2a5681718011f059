package watermark

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Composite draws spec.Text onto a copy of base with the top-left of its
// line box at pos and returns the copy.
//
// The text is rendered into a transparent coverage layer the size of the
// base image, each glyph pixel scaled by AlphaFromOpacity(spec.Opacity),
// and the layer is blended over the copy with the "over" operator:
//
//	out = fg*alpha + bg*(1-alpha)
//
// The result always has the dimensions of base, with its origin moved to
// (0,0). base is never modified. Text that falls partly outside the image
// is clipped; text whose line box lies wholly outside it draws nothing.
//
// # Errors
//
//   - ErrNoBaseImage if base is nil
//   - ErrEmptyText, ErrInvalidOpacity, ErrInvalidFontSize from spec.Validate
//   - ErrFontUnavailable if fonts is nil or a face cannot be built
func Composite(base image.Image, spec Spec, pos image.Point, fonts *Fonts) (*image.NRGBA, error) {
	if base == nil {
		return nil, ErrNoBaseImage
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := imaging.Clone(base)
	layer := image.NewAlpha(out.Bounds())

	err := fonts.withFace(spec.FontSize, func(face font.Face) error {
		// Off-image boxes are skipped; fixed.Int26_6 would wrap them.
		box := image.Rectangle{Min: pos, Max: pos.Add(textBox(face, spec.Text))}
		if !box.Overlaps(layer.Bounds()) {
			return nil
		}
		d := &font.Drawer{
			Dst:  layer,
			Src:  image.NewUniform(color.Alpha{A: AlphaFromOpacity(spec.Opacity)}),
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.I(pos.X),
				Y: fixed.I(pos.Y) + face.Metrics().Ascent,
			},
		}
		d.DrawString(spec.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	fg := image.NewUniform(color.NRGBA{R: spec.Color.R, G: spec.Color.G, B: spec.Color.B, A: 0xff})
	draw.DrawMask(out, out.Bounds(), fg, image.Point{}, layer, layer.Bounds().Min, draw.Over)

	return out, nil
}

// Apply measures spec.Text, resolves placement against base and composites.
// It returns the composited image and the rectangle the text box occupies.
func Apply(base image.Image, spec Spec, placement Placement, fonts *Fonts) (*image.NRGBA, image.Rectangle, error) {
	if base == nil {
		return nil, image.Rectangle{}, ErrNoBaseImage
	}
	if err := spec.Validate(); err != nil {
		return nil, image.Rectangle{}, err
	}

	box, err := fonts.TextBox(spec.Text, spec.FontSize)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	pos, err := Resolve(placement, base.Bounds().Size(), box)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	out, err := Composite(base, spec, pos, fonts)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return out, image.Rectangle{Min: pos, Max: pos.Add(box)}, nil
}

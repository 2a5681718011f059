package watermark

import (
	"fmt"
	"image"
	"strings"
)

// Inset is the distance in pixels between the text box and the image edge
// for the corner anchors.
const Inset = 10

// Anchor is a named position resolved against the image and text sizes.
type Anchor int

const (
	TopLeft Anchor = iota + 1
	Center
	BottomRight
)

// String returns the label shown to users.
func (a Anchor) String() string {
	switch a {
	case TopLeft:
		return "Top Left"
	case Center:
		return "Center"
	case BottomRight:
		return "Bottom Right"
	default:
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
}

// ParseAnchor converts a user-supplied anchor name into an Anchor.
//
// Matching ignores case, spaces, hyphens and underscores, so "Top Left",
// "top-left", "top_left" and "TopLeft" are all accepted.
func ParseAnchor(name string) (Anchor, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))

	switch key {
	case "topleft":
		return TopLeft, nil
	case "center", "centre":
		return Center, nil
	case "bottomright":
		return BottomRight, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAnchor, name)
	}
}

// ResolveAnchorPosition returns the top-left pixel at which a text box of
// size textBox must be drawn so that it sits at anchor inside an image of
// size imageSize.
//
// Coordinates are not clamped: text larger than the image yields negative
// positions and is clipped when drawn.
//
// # Layout
//
//   - TopLeft: (Inset, Inset), independent of both sizes
//   - Center: ((W-w)/2, (H-h)/2) using integer division
//   - BottomRight: (W-w-Inset, H-h-Inset)
func ResolveAnchorPosition(imageSize, textBox image.Point, anchor Anchor) (image.Point, error) {
	switch anchor {
	case TopLeft:
		return image.Pt(Inset, Inset), nil
	case Center:
		return image.Pt((imageSize.X-textBox.X)/2, (imageSize.Y-textBox.Y)/2), nil
	case BottomRight:
		return image.Pt(imageSize.X-textBox.X-Inset, imageSize.Y-textBox.Y-Inset), nil
	default:
		return image.Point{}, fmt.Errorf("%w: %v", ErrInvalidAnchor, anchor)
	}
}

// Placement says where a watermark goes: either a named anchor or an
// explicit pixel coordinate, typically from a pointer click.
type Placement struct {
	anchor Anchor
	point  image.Point
	fixed  bool
}

// AtAnchor places the watermark at a named anchor.
func AtAnchor(a Anchor) Placement {
	return Placement{anchor: a}
}

// AtPoint places the top-left of the text box at p.
func AtPoint(p image.Point) Placement {
	return Placement{point: p, fixed: true}
}

// Anchor reports the named anchor and whether the placement uses one.
func (p Placement) Anchor() (Anchor, bool) {
	return p.anchor, !p.fixed
}

// Point reports the explicit coordinate and whether the placement uses one.
func (p Placement) Point() (image.Point, bool) {
	return p.point, p.fixed
}

func (p Placement) String() string {
	if p.fixed {
		return p.point.String()
	}
	return p.anchor.String()
}

// Resolve turns a placement into a drawing position.
func Resolve(p Placement, imageSize, textBox image.Point) (image.Point, error) {
	if p.fixed {
		return p.point, nil
	}
	return ResolveAnchorPosition(imageSize, textBox, p.anchor)
}

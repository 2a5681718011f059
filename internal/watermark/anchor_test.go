package watermark

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAnchorPosition(t *testing.T) {
	tests := []struct {
		name   string
		img    image.Point
		box    image.Point
		anchor Anchor
		want   image.Point
	}{
		{"center", image.Pt(400, 400), image.Pt(100, 20), Center, image.Pt(150, 190)},
		{"center odd remainder", image.Pt(401, 401), image.Pt(100, 20), Center, image.Pt(150, 190)},
		{"bottom right", image.Pt(400, 400), image.Pt(100, 20), BottomRight, image.Pt(290, 370)},
		{"top left", image.Pt(400, 400), image.Pt(100, 20), TopLeft, image.Pt(10, 10)},
		{"top left tiny image", image.Pt(5, 5), image.Pt(100, 20), TopLeft, image.Pt(10, 10)},
		{"top left huge image", image.Pt(8000, 6000), image.Pt(1, 1), TopLeft, image.Pt(10, 10)},
		{"bottom right text wider than image", image.Pt(50, 30), image.Pt(100, 20), BottomRight, image.Pt(-60, 0)},
		{"center text wider than image", image.Pt(50, 10), image.Pt(100, 20), Center, image.Pt(-25, -5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAnchorPosition(tt.img, tt.box, tt.anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAnchorPosition_InvalidAnchor(t *testing.T) {
	for _, a := range []Anchor{0, Anchor(42)} {
		_, err := ResolveAnchorPosition(image.Pt(100, 100), image.Pt(10, 10), a)
		assert.True(t, errors.Is(err, ErrInvalidAnchor), "anchor %d", int(a))
	}
}

func TestParseAnchor(t *testing.T) {
	tests := map[string]Anchor{
		"Top Left":     TopLeft,
		"top-left":     TopLeft,
		"TopLeft":      TopLeft,
		"top_left":     TopLeft,
		"Center":       Center,
		" centre ":     Center,
		"Bottom Right": BottomRight,
		"bottom-right": BottomRight,
		"BOTTOMRIGHT":  BottomRight,
	}
	for in, want := range tests {
		got, err := ParseAnchor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "Top Right", "middle", "bottom"} {
		_, err := ParseAnchor(bad)
		assert.ErrorIs(t, err, ErrInvalidAnchor, bad)
	}
}

func TestAnchor_String(t *testing.T) {
	assert.Equal(t, "Top Left", TopLeft.String())
	assert.Equal(t, "Center", Center.String())
	assert.Equal(t, "Bottom Right", BottomRight.String())
	assert.Equal(t, "Anchor(9)", Anchor(9).String())
}

func TestResolve(t *testing.T) {
	pos, err := Resolve(AtPoint(image.Pt(-3, 77)), image.Pt(10, 10), image.Pt(500, 500))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(-3, 77), pos, "explicit points pass through unchanged")

	pos, err = Resolve(AtAnchor(Center), image.Pt(400, 400), image.Pt(100, 20))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(150, 190), pos)

	_, err = Resolve(Placement{}, image.Pt(400, 400), image.Pt(100, 20))
	assert.ErrorIs(t, err, ErrInvalidAnchor)
}

func TestPlacement_Accessors(t *testing.T) {
	p := AtAnchor(BottomRight)
	a, ok := p.Anchor()
	assert.True(t, ok)
	assert.Equal(t, BottomRight, a)
	_, ok = p.Point()
	assert.False(t, ok)
	assert.Equal(t, "Bottom Right", p.String())

	p = AtPoint(image.Pt(4, 5))
	pt, ok := p.Point()
	assert.True(t, ok)
	assert.Equal(t, image.Pt(4, 5), pt)
	_, ok = p.Anchor()
	assert.False(t, ok)
	assert.Equal(t, "(4,5)", p.String())
}

package watermark

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = color.RGBA{255, 255, 255, 255}

// createInMemoryImage creates a solid-colour NRGBA image.
func createInMemoryImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func mustFonts(t *testing.T) *Fonts {
	t.Helper()
	f, err := LoadFonts("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// maxRed returns the largest red component inside r.
func maxRed(img *image.NRGBA, r image.Rectangle) uint8 {
	r = r.Intersect(img.Bounds())
	var m uint8
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if v := img.NRGBAAt(x, y).R; v > m {
				m = v
			}
		}
	}
	return m
}

// samePixels reports whether a and b are identical inside r.
func samePixels(a, b *image.NRGBA, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if a.NRGBAAt(x, y) != b.NRGBAAt(x, y) {
				return false
			}
		}
	}
	return true
}

func TestAlphaFromOpacity(t *testing.T) {
	tests := []struct {
		opacity float64
		want    uint8
	}{
		{1.0, 255},
		{0.1, 26},
		{0.5, 128},
		{0.0, 0},
		{-0.3, 0},
		{1.7, 255},
		{0.002, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlphaFromOpacity(tt.opacity), "opacity %v", tt.opacity)
	}
}

func TestSpec_Validate(t *testing.T) {
	ok := Spec{Text: "x", Color: white, Opacity: 1, FontSize: 20}
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name string
		mod  func(*Spec)
		want error
	}{
		{"empty text", func(s *Spec) { s.Text = "" }, ErrEmptyText},
		{"zero opacity", func(s *Spec) { s.Opacity = 0 }, ErrInvalidOpacity},
		{"opacity above one", func(s *Spec) { s.Opacity = 1.01 }, ErrInvalidOpacity},
		{"zero font size", func(s *Spec) { s.FontSize = 0 }, ErrInvalidFontSize},
		{"negative font size", func(s *Spec) { s.FontSize = -4 }, ErrInvalidFontSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ok
			tt.mod(&s)
			assert.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}

func TestLoadFonts_Bundled(t *testing.T) {
	f := mustFonts(t)
	assert.Equal(t, BundledFont, f.Source())
}

func TestLoadFonts_MissingFile(t *testing.T) {
	_, err := LoadFonts("/nonexistent/arial.ttf")
	assert.ErrorIs(t, err, ErrFontUnavailable)
}

func TestLoadFonts_NotAFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(path, []byte("not a font"), 0o644))

	_, err := LoadFonts(path)
	assert.ErrorIs(t, err, ErrFontUnavailable)
}

func TestFonts_NilIsUnavailable(t *testing.T) {
	var f *Fonts
	_, err := f.TextBox("abc", 20)
	assert.ErrorIs(t, err, ErrFontUnavailable)
}

func TestFonts_TextBox(t *testing.T) {
	f := mustFonts(t)

	short, err := f.TextBox("ab", 20)
	require.NoError(t, err)
	long, err := f.TextBox("abababab", 20)
	require.NoError(t, err)
	big, err := f.TextBox("ab", 60)
	require.NoError(t, err)

	assert.Greater(t, short.X, 0)
	assert.Greater(t, short.Y, 0)
	assert.Greater(t, long.X, short.X)
	assert.Equal(t, short.Y, long.Y, "line height does not depend on the text")
	assert.Greater(t, big.Y, short.Y)
	assert.Greater(t, big.X, short.X)

	_, err = f.TextBox("ab", 0)
	assert.ErrorIs(t, err, ErrInvalidFontSize)
}

func TestComposite_PreservesDimensions(t *testing.T) {
	f := mustFonts(t)
	spec := Spec{Text: "Sample", Color: white, Opacity: 0.7, FontSize: 24}

	sizes := []image.Point{{400, 400}, {640, 480}, {37, 11}, {1, 1}}
	anchors := []Anchor{TopLeft, Center, BottomRight}

	for _, size := range sizes {
		for _, a := range anchors {
			base := createInMemoryImage(size.X, size.Y, color.NRGBA{10, 20, 30, 255})
			out, _, err := Apply(base, spec, AtAnchor(a), f)
			require.NoError(t, err)
			assert.Equal(t, base.Bounds().Size(), out.Bounds().Size(), "%v at %v", size, a)
		}
	}
}

func TestComposite_NonZeroOrigin(t *testing.T) {
	f := mustFonts(t)
	full := createInMemoryImage(200, 100, color.NRGBA{0, 0, 0, 255})
	sub := full.SubImage(image.Rect(20, 10, 120, 60))

	out, err := Composite(sub, Spec{Text: "x", Color: white, Opacity: 1, FontSize: 12}, image.Pt(0, 0), f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), out.Bounds())
}

func TestComposite_DoesNotMutateBase(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(120, 60, color.NRGBA{0, 0, 0, 255})
	before := createInMemoryImage(120, 60, color.NRGBA{0, 0, 0, 255})

	out, err := Composite(base, Spec{Text: "HELLO", Color: white, Opacity: 1, FontSize: 30}, image.Pt(5, 5), f)
	require.NoError(t, err)

	assert.True(t, samePixels(base, before, base.Bounds()), "base image was modified")
	assert.False(t, samePixels(out, before, out.Bounds()), "watermark not drawn")
}

func TestComposite_DrawsInsideTextBoxOnly(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(300, 120, color.NRGBA{0, 0, 0, 255})
	spec := Spec{Text: "HHHH", Color: white, Opacity: 1, FontSize: 40}

	out, box, err := Apply(base, spec, AtAnchor(TopLeft), f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 10), box.Min)

	assert.Equal(t, uint8(255), maxRed(out, box), "fully covered glyph pixels take the text colour")

	// Everything outside the text box is untouched.
	for y := 0; y < 120; y++ {
		for x := 0; x < 300; x++ {
			if image.Pt(x, y).In(box) {
				continue
			}
			require.Equal(t, base.NRGBAAt(x, y), out.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestComposite_Opacity(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(300, 120, color.NRGBA{0, 0, 0, 255})

	tests := []struct {
		opacity float64
		want    uint8
	}{
		{1.0, 255},
		{0.5, 128},
		{0.1, 26},
	}
	for _, tt := range tests {
		spec := Spec{Text: "HHHH", Color: white, Opacity: tt.opacity, FontSize: 40}
		out, box, err := Apply(base, spec, AtAnchor(TopLeft), f)
		require.NoError(t, err)

		got := maxRed(out, box)
		assert.InDelta(t, float64(tt.want), float64(got), 1, "opacity %v", tt.opacity)
	}
}

func TestComposite_Color(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(300, 120, color.NRGBA{0, 0, 0, 255})
	spec := Spec{Text: "HHHH", Color: color.RGBA{255, 0, 0, 255}, Opacity: 1, FontSize: 40}

	out, box, err := Apply(base, spec, AtAnchor(Center), f)
	require.NoError(t, err)

	found := false
	for y := box.Min.Y; y < box.Max.Y && !found; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if out.NRGBAAt(x, y) == (color.NRGBA{255, 0, 0, 255}) {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "expected pure red text pixels")
}

func TestComposite_Cumulative(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(400, 200, color.NRGBA{0, 0, 0, 255})

	first, box1, err := Apply(base, Spec{Text: "FIRST", Color: white, Opacity: 1, FontSize: 30}, AtAnchor(TopLeft), f)
	require.NoError(t, err)
	second, box2, err := Apply(first, Spec{Text: "SECOND", Color: white, Opacity: 1, FontSize: 30}, AtAnchor(BottomRight), f)
	require.NoError(t, err)
	require.False(t, box1.Overlaps(box2))

	assert.Equal(t, uint8(255), maxRed(second, box1), "first watermark survives the second apply")
	assert.Equal(t, uint8(255), maxRed(second, box2), "second watermark drawn")

	onlySecond, _, err := Apply(base, Spec{Text: "SECOND", Color: white, Opacity: 1, FontSize: 30}, AtAnchor(BottomRight), f)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), maxRed(onlySecond, box1))
}

func TestComposite_NegativePositionIsClipped(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(40, 20, color.NRGBA{0, 0, 0, 255})
	spec := Spec{Text: "MUCH TOO LONG FOR THIS IMAGE", Color: white, Opacity: 1, FontSize: 30}

	out, box, err := Apply(base, spec, AtAnchor(Center), f)
	require.NoError(t, err)
	assert.Less(t, box.Min.X, 0)
	assert.Equal(t, base.Bounds(), out.Bounds())
}

func TestComposite_Errors(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(50, 50, color.NRGBA{0, 0, 0, 255})

	_, err := Composite(nil, Spec{Text: "x", Color: white, Opacity: 1, FontSize: 10}, image.Pt(0, 0), f)
	assert.ErrorIs(t, err, ErrNoBaseImage)

	_, err = Composite(base, Spec{Text: "", Color: white, Opacity: 1, FontSize: 10}, image.Pt(0, 0), f)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = Composite(base, Spec{Text: "x", Color: white, Opacity: 1, FontSize: 10}, image.Pt(0, 0), nil)
	assert.ErrorIs(t, err, ErrFontUnavailable)

	_, _, err = Apply(base, Spec{Text: "x", Color: white, Opacity: 1, FontSize: 10}, Placement{}, f)
	assert.ErrorIs(t, err, ErrInvalidAnchor)

	_, _, err = Apply(nil, Spec{Text: "x", Color: white, Opacity: 1, FontSize: 10}, AtAnchor(Center), f)
	assert.ErrorIs(t, err, ErrNoBaseImage)
}

func TestComposite_FarOffImagePointDrawsNothing(t *testing.T) {
	f := mustFonts(t)
	base := createInMemoryImage(300, 100, color.NRGBA{0, 0, 0, 255})
	spec := Spec{Text: "HHHH", Color: white, Opacity: 1, FontSize: 40}

	points := []image.Point{
		{1<<26 + 20, 10},
		{10, 1<<26 + 10},
		{-(1 << 26) + 20, 10},
		{300, 10},
	}
	for _, p := range points {
		out, box, err := Apply(base, spec, AtPoint(p), f)
		require.NoError(t, err)
		assert.Equal(t, p, box.Min, "position is reported unclamped")
		assert.True(t, samePixels(base, out, base.Bounds()), "text at %v must not appear in the image", p)
	}
}

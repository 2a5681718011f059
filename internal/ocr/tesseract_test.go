package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/watermark-mcp/internal/watermark"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// watermarked draws text with the real compositor and returns the image
// and the text box.
func watermarked(t *testing.T, bg, fg color.RGBA, text string) (image.Image, image.Rectangle) {
	t.Helper()
	fonts, err := watermark.LoadFonts("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = fonts.Close() })

	spec := watermark.Spec{Text: text, Color: fg, Opacity: 1.0, FontSize: 40}
	out, region, err := watermark.Apply(solid(600, 200, bg), spec, watermark.AtAnchor(watermark.Center), fonts)
	require.NoError(t, err)
	return out, region
}

// requireTesseract skips the test when Tesseract or its English data is
// not installed.
func requireTesseract(t *testing.T) {
	t.Helper()
	if _, err := ExtractText(solid(32, 32, color.White), DefaultLanguage); err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		recognized, expected string
		want                 bool
	}{
		{"CONFIDENTIAL\n", "CONFIDENTIAL", true},
		{"confi dential", "Confidential", true},
		{"Draft copy - do not share", "do not share", true},
		{"DRAFT", "FINAL", false},
		{"anything", "", false},
		{"", "x", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.recognized, tt.expected), "%q vs %q", tt.recognized, tt.expected)
	}
}

func TestClipRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)

	r, err := clipRegion(bounds, image.Rect(10, 10, 40, 30))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(6, 6, 44, 34), r)

	r, err = clipRegion(bounds, image.Rect(-20, -5, 30, 70))
	require.NoError(t, err)
	assert.Equal(t, bounds.Intersect(image.Rect(-24, -9, 34, 74)), r)

	_, err = clipRegion(bounds, image.Rect(200, 200, 260, 220))
	assert.ErrorIs(t, err, ErrRegionOutside)
}

func TestUpscaleFactor(t *testing.T) {
	assert.Equal(t, 1, upscaleFactor(0))
	assert.Equal(t, 1, upscaleFactor(minOCRHeight))
	assert.Equal(t, 1, upscaleFactor(500))
	assert.Equal(t, 2, upscaleFactor(48))
	assert.Equal(t, 3, upscaleFactor(40))
	assert.Equal(t, maxUpscale, upscaleFactor(5))
}

func TestPreprocess(t *testing.T) {
	t.Run("light background stays light", func(t *testing.T) {
		out, scale := preprocess(solid(50, 20, color.White))
		assert.Equal(t, 4, scale)
		assert.Equal(t, image.Pt(200, 80), out.Bounds().Size())

		r, g, b, _ := out.At(10, 10).RGBA()
		assert.Equal(t, r, g)
		assert.Equal(t, g, b)
		assert.Greater(t, r>>8, uint32(200))
	})

	t.Run("dark background is inverted", func(t *testing.T) {
		out, scale := preprocess(solid(200, 120, color.RGBA{10, 10, 40, 255}))
		assert.Equal(t, 1, scale)
		r, _, _, _ := out.At(5, 5).RGBA()
		assert.Greater(t, r>>8, uint32(200))
	})
}

func TestVerifyText_RegionOutside(t *testing.T) {
	_, err := VerifyText(solid(100, 100, color.White), image.Rect(500, 500, 600, 520), "x", "")
	assert.ErrorIs(t, err, ErrRegionOutside)
}

func TestVerifyText_DarkOnLight(t *testing.T) {
	requireTesseract(t)

	img, region := watermarked(t, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255}, "WATERMARK")
	result, err := VerifyText(img, region, "WATERMARK", DefaultLanguage)
	require.NoError(t, err)

	assert.True(t, result.Match, "recognized %q", result.Recognized)
	assert.Equal(t, region.Min.X-Padding, result.Region.X1)
}

func TestVerifyText_LightOnDark(t *testing.T) {
	requireTesseract(t)

	img, region := watermarked(t, color.RGBA{20, 20, 20, 255}, color.RGBA{255, 255, 255, 255}, "SAMPLE")
	result, err := VerifyText(img, region, "sample", DefaultLanguage)
	require.NoError(t, err)
	assert.True(t, result.Match, "recognized %q", result.Recognized)
}

func TestVerifyText_WrongText(t *testing.T) {
	requireTesseract(t)

	img, region := watermarked(t, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255}, "HELLO")
	result, err := VerifyText(img, region, "GOODBYE", DefaultLanguage)
	require.NoError(t, err)
	assert.False(t, result.Match)
}

func TestExtractText_InvalidLanguage(t *testing.T) {
	requireTesseract(t)

	_, err := ExtractText(solid(32, 32, color.White), "invalid_lang_xyz")
	assert.Error(t, err)
}

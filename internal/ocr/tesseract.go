package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"unicode"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// Padding is added around the text box before cropping so that glyph
// edges are not cut off.
const Padding = 4

// minOCRHeight is the crop height below which crops are upscaled.
const minOCRHeight = 96

const maxUpscale = 4

// ErrRegionOutside is returned when the region to verify has no pixels
// inside the image.
var ErrRegionOutside = errors.New("region lies outside the image")

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the source image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the text found in an image.
type OCRResult struct {
	// FullText is all recognized text with original spacing/newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words. May be empty when bounding box
	// extraction fails; the text is still in FullText.
	Regions []TextRegion `json:"regions"`
}

// VerifyResult reports whether a watermark can be read back from an image.
type VerifyResult struct {
	Expected   string       `json:"expected"`
	Recognized string       `json:"recognized"`
	Match      bool         `json:"match"`
	Region     Bounds       `json:"region"`
	Words      []TextRegion `json:"words"`
}

// ExtractText performs OCR on an in-memory image.
//
// Parameters:
//   - img: The image to read.
//   - language: Tesseract language code (e.g., "eng"). The language data
//     must be installed on the system.
//
// Returns:
//   - *OCRResult: Full text plus word-level boxes in img's coordinates
//     relative to its top-left corner.
//   - error: Non-nil if encoding or OCR fails.
func ExtractText(img image.Image, language string) (*OCRResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{FullText: text, Regions: regions}, nil
}

// VerifyText checks that expected can be read inside region of img.
//
// Parameters:
//   - img: The watermarked image.
//   - region: The text box of the watermark, relative to img's top-left
//     corner. It is padded by Padding and clipped to the image.
//   - expected: The watermark text.
//   - language: Tesseract language code; empty selects DefaultLanguage.
//
// Returns:
//   - *VerifyResult: The recognized text and whether it contains expected.
//     Matching ignores case and whitespace. Word bounds are mapped back to
//     img's coordinates.
//   - error: ErrRegionOutside if the region misses the image entirely, or
//     the OCR error.
//
// # Preprocessing
//
// The crop is converted to grayscale, inverted when its mean luminance is
// dark (Tesseract reads dark text on a light background best) and upscaled
// so that small watermarks have enough pixels per glyph.
func VerifyText(img image.Image, region image.Rectangle, expected, language string) (*VerifyResult, error) {
	crop, err := clipRegion(img.Bounds(), region)
	if err != nil {
		return nil, err
	}

	prepared, scale := preprocess(imaging.Crop(img, crop))

	result, err := ExtractText(prepared, language)
	if err != nil {
		return nil, err
	}

	words := make([]TextRegion, len(result.Regions))
	for i, w := range result.Regions {
		w.Bounds = Bounds{
			X1: crop.Min.X + w.Bounds.X1/scale,
			Y1: crop.Min.Y + w.Bounds.Y1/scale,
			X2: crop.Min.X + w.Bounds.X2/scale,
			Y2: crop.Min.Y + w.Bounds.Y2/scale,
		}
		words[i] = w
	}

	recognized := strings.TrimSpace(result.FullText)
	return &VerifyResult{
		Expected:   expected,
		Recognized: recognized,
		Match:      Matches(recognized, expected),
		Region:     Bounds{X1: crop.Min.X, Y1: crop.Min.Y, X2: crop.Max.X, Y2: crop.Max.Y},
		Words:      words,
	}, nil
}

// Matches reports whether recognized contains expected, ignoring case and
// whitespace. An empty expected string never matches.
func Matches(recognized, expected string) bool {
	want := normalize(expected)
	if want == "" {
		return false
	}
	return strings.Contains(normalize(recognized), want)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// clipRegion pads region and clips it to bounds. Returned coordinates are
// absolute, like bounds.
func clipRegion(bounds, region image.Rectangle) (image.Rectangle, error) {
	r := region.Canon().Add(bounds.Min).Inset(-Padding).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %v", ErrRegionOutside, region)
	}
	return r, nil
}

// preprocess returns a grayscale, dark-on-light, upscaled copy of img and
// the integer scale factor applied.
func preprocess(img image.Image) (image.Image, int) {
	gray := effect.Grayscale(img)

	var out image.Image = gray
	if meanLuminance(gray) < 128 {
		out = effect.Invert(gray)
	}

	scale := upscaleFactor(gray.Bounds().Dy())
	if scale > 1 {
		b := out.Bounds()
		out = transform.Resize(out, b.Dx()*scale, b.Dy()*scale, transform.Linear)
	}
	return out, scale
}

func upscaleFactor(height int) int {
	if height <= 0 || height >= minOCRHeight {
		return 1
	}
	scale := (minOCRHeight + height - 1) / height
	if scale > maxUpscale {
		scale = maxUpscale
	}
	return scale
}

func meanLuminance(img *image.Gray) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += uint64(img.GrayAt(x, y).Y)
		}
	}
	return float64(sum) / float64(b.Dx()*b.Dy())
}

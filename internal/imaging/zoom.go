package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxZoom is the largest accepted zoom factor.
const MaxZoom = 8.0

// CropResult contains a cropped and scaled region as base64 PNG.
type CropResult struct {
	Region      image.Rectangle `json:"-"`
	X1          int             `json:"x1"`
	Y1          int             `json:"y1"`
	X2          int             `json:"x2"`
	Y2          int             `json:"y2"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	ImageBase64 string          `json:"image_base64"`
	MimeType    string          `json:"mime_type"`
}

// Zoom crops region out of img and scales it, for close inspection of a
// watermark.
//
// Parameters:
//   - img: The source image.
//   - region: Rectangle relative to img's top-left corner. It is clipped to
//     the image; a region with no pixels inside is an error.
//   - scale: Zoom factor in (0, MaxZoom]. Zero means 1.
//
// Returns:
//   - *CropResult: The clipped region and the scaled crop as base64 PNG.
//   - error: Non-nil for an empty region or an out-of-range scale.
func Zoom(img image.Image, region image.Rectangle, scale float64) (*CropResult, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || scale > MaxZoom {
		return nil, fmt.Errorf("zoom scale %v outside (0, %v]", scale, MaxZoom)
	}

	bounds := img.Bounds()
	clipped := region.Canon().Add(bounds.Min).Intersect(bounds)
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v does not overlap the %dx%d image", region, bounds.Dx(), bounds.Dy())
	}

	cropped := imaging.Crop(img, clipped)
	if scale != 1 {
		w := int(float64(cropped.Bounds().Dx())*scale + 0.5)
		h := int(float64(cropped.Bounds().Dy())*scale + 0.5)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		cropped = imaging.Resize(cropped, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode zoomed region: %w", err)
	}

	rel := clipped.Sub(bounds.Min)
	return &CropResult{
		Region:      rel,
		X1:          rel.Min.X,
		Y1:          rel.Min.Y,
		X2:          rel.Max.X,
		Y2:          rel.Max.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultPreviewSize is the edge of the square box previews are fitted into.
const DefaultPreviewSize = 400

// PreviewResult contains a downscaled copy of an image for display.
type PreviewResult struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	ImageBase64    string `json:"image_base64"`
	MimeType       string `json:"mime_type"`
}

// Preview fits img into a maxWidth x maxHeight box, keeping its aspect
// ratio, and returns it as a base64 PNG. Images already inside the box are
// not enlarged. The source image is not modified.
func Preview(img image.Image, maxWidth, maxHeight int) (*PreviewResult, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", maxWidth, maxHeight)
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:          thumb.Bounds().Dx(),
		Height:         thumb.Bounds().Dy(),
		OriginalWidth:  img.Bounds().Dx(),
		OriginalHeight: img.Bounds().Dy(),
		ImageBase64:    base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:       "image/png",
	}, nil
}

package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// DefaultDiffThreshold is the mean per-channel difference above which a
// pixel counts as changed.
const DefaultDiffThreshold = 0.0

// DiffResult describes how two same-sized images differ.
type DiffResult struct {
	Identical        bool    `json:"identical"`
	ChangedPixels    int     `json:"changed_pixels"`
	TotalPixels      int     `json:"total_pixels"`
	ChangedFraction  float64 `json:"changed_fraction"`
	AverageColorDiff float64 `json:"average_color_diff"`

	// Changed is the smallest rectangle holding every changed pixel,
	// relative to the images' top-left corners. Empty when identical.
	Changed image.Rectangle `json:"-"`
	X1      int             `json:"x1"`
	Y1      int             `json:"y1"`
	X2      int             `json:"x2"`
	Y2      int             `json:"y2"`
}

// Diff compares a and b pixel by pixel in non-premultiplied RGBA. Both
// images must have the same size; their origins may differ.
//
// A pixel is changed when the mean absolute difference of its four
// channels exceeds threshold. With threshold 0 any difference counts, so
// Identical means the images are pixel-identical.
func Diff(a, b image.Image, threshold float64) (*DiffResult, error) {
	if a == nil || b == nil {
		return nil, ErrNoImage
	}
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return nil, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	w, h := ab.Dx(), ab.Dy()
	total := w * h
	changed := 0
	var changedRect image.Rectangle
	var totalDiff float64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA)

			diff := float64(absDiff(ca.R, cb.R)+absDiff(ca.G, cb.G)+absDiff(ca.B, cb.B)+absDiff(ca.A, cb.A)) / 4.0
			totalDiff += diff

			if diff > threshold {
				changed++
				changedRect = changedRect.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}

	result := &DiffResult{
		Identical:     changed == 0,
		ChangedPixels: changed,
		TotalPixels:   total,
		Changed:       changedRect,
		X1:            changedRect.Min.X,
		Y1:            changedRect.Min.Y,
		X2:            changedRect.Max.X,
		Y2:            changedRect.Max.Y,
	}
	if total > 0 {
		result.ChangedFraction = math.Round(float64(changed)/float64(total)*10000) / 10000
		result.AverageColorDiff = math.Round(totalDiff/float64(total)*100) / 100
	}
	return result, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

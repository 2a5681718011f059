package watermark

import (
	"fmt"
	"image"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BundledFont names the font used when no font path is configured.
const BundledFont = "Go Regular (bundled)"

// Fonts is the font resource used to render watermark text.
//
// A Fonts value wraps one parsed TrueType/OpenType font and hands out faces
// at arbitrary pixel sizes. Faces are created on first use and cached per
// size. A font.Face keeps internal buffers and is not safe for concurrent
// use, so all access goes through a mutex; Fonts itself is safe to share.
type Fonts struct {
	source string
	font   *opentype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// LoadFonts opens the font resource.
//
// Parameters:
//   - path: Path to a .ttf or .otf file. An empty path selects the bundled
//     Go Regular font.
//
// Returns:
//   - *Fonts: Ready to render at any size.
//   - error: Wraps ErrFontUnavailable when a non-empty path cannot be read
//     or parsed. There is no silent fallback to the bundled font in that
//     case; a configured font that is missing is a configuration error.
func LoadFonts(path string) (*Fonts, error) {
	data := goregular.TTF
	source := BundledFont
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
		}
		data = b
		source = path
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrFontUnavailable, source, err)
	}

	return &Fonts{
		source: source,
		font:   f,
		faces:  make(map[int]font.Face),
	}, nil
}

// Source reports the font file in use, or BundledFont.
func (f *Fonts) Source() string {
	if f == nil {
		return ""
	}
	return f.source
}

// TextBox returns the size of the line box that text occupies at the given
// pixel size: the advance width of the string and the face's ascent plus
// descent, both rounded up.
func (f *Fonts) TextBox(text string, size int) (image.Point, error) {
	var box image.Point
	err := f.withFace(size, func(face font.Face) error {
		box = textBox(face, text)
		return nil
	})
	return box, err
}

func (f *Fonts) withFace(size int, fn func(font.Face) error) error {
	if f == nil || f.font == nil {
		return ErrFontUnavailable
	}
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFontSize, size)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	face, ok := f.faces[size]
	if !ok {
		var err error
		face, err = opentype.NewFace(f.font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return fmt.Errorf("%w: size %d: %v", ErrFontUnavailable, size, err)
		}
		f.faces[size] = face
	}
	return fn(face)
}

// Close releases all cached faces.
func (f *Fonts) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for size, face := range f.faces {
		_ = face.Close()
		delete(f.faces, size)
	}
	return nil
}

func textBox(face font.Face, text string) image.Point {
	m := face.Metrics()
	return image.Pt(
		font.MeasureString(face, text).Ceil(),
		(m.Ascent + m.Descent).Ceil(),
	)
}

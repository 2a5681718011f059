package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

// DefaultExtension is appended to output paths that have no extension.
const DefaultExtension = ".png"

// JPEGQuality is used when exporting to JPEG.
const JPEGQuality = 95

// ErrNoImage is returned when a nil image is passed for saving or preview.
var ErrNoImage = errors.New("no image")

// Save writes img to path, picking the encoder from the file extension.
//
// A path without an extension gets DefaultExtension. Missing parent
// directories are created. PNG output is lossless, so saving and reloading
// a PNG reproduces the pixels exactly. JPEG has no alpha channel; images are
// flattened onto white first.
//
// The image is encoded into a temporary file next to path and renamed into
// place, so a failed encode never leaves a truncated file at path.
//
// Returns the path actually written.
func Save(img image.Image, path string) (string, error) {
	if img == nil {
		return "", ErrNoImage
	}
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}

	enc, err := encoderFor(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	if err := writeAtomic(path, img, enc); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}

func writeAtomic(path string, img image.Image, enc imgio.Encoder) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := enc(tmp, img); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encoderFor(path string) (imgio.Encoder, error) {
	switch format := FormatFromPath(path); format {
	case "png":
		return imgio.PNGEncoder(), nil
	case "jpeg":
		jpeg := imgio.JPEGEncoder(JPEGQuality)
		return func(w io.Writer, img image.Image) error {
			return jpeg(w, flatten(img, color.White))
		}, nil
	case "bmp":
		return imgio.BMPEncoder(), nil
	case "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format for %q", filepath.Base(path))
	}
}

// flatten composites img over an opaque background of colour bg.
func flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Point{}, 1.0)
}

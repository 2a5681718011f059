package imaging

import (
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_PNGRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 5), uint8(x ^ y), uint8(128 + x)})
		}
	}

	path, err := Save(src, filepath.Join(t.TempDir(), "out.png"))
	require.NoError(t, err)

	got, err := NewImageCache().Load(path)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), got.Bounds())

	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			want := src.NRGBAAt(x, y)
			have := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
			require.Equal(t, want, have, "pixel (%d,%d)", x, y)
		}
	}
}

func TestSave_DefaultExtension(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	path, err := Save(img, filepath.Join(t.TempDir(), "watermarked"))
	require.NoError(t, err)
	assert.Equal(t, DefaultExtension, filepath.Ext(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSave_CreatesDirectories(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	path, err := Save(img, filepath.Join(t.TempDir(), "a", "b", "out.png"))
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSave_OtherFormats(t *testing.T) {
	img := createPatternImage(40, 40)

	for _, ext := range []string{".jpg", ".jpeg", ".bmp", ".tiff"} {
		t.Run(ext, func(t *testing.T) {
			path, err := Save(img, filepath.Join(t.TempDir(), "out"+ext))
			require.NoError(t, err)

			got, err := NewImageCache().Load(path)
			require.NoError(t, err)
			assert.Equal(t, img.Bounds().Size(), got.Bounds().Size())
		})
	}
}

func TestSave_JPEGFlattensOntoWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16)) // fully transparent

	path, err := Save(img, filepath.Join(t.TempDir(), "out.jpg"))
	require.NoError(t, err)

	got, err := NewImageCache().Load(path)
	require.NoError(t, err)

	r, g, b, _ := got.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(245))
	assert.Greater(t, g>>8, uint32(245))
	assert.Greater(t, b>>8, uint32(245))
}

func TestSave_Errors(t *testing.T) {
	_, err := Save(nil, filepath.Join(t.TempDir(), "out.png"))
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = Save(createInMemoryImage(4, 4, color.White), filepath.Join(t.TempDir(), "out.xyz"))
	assert.Error(t, err)
}

func TestSave_FailedEncodeKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, filepath.Join(dir, "photo.png"), createInMemoryImage(8, 8, color.Black))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	failing := func(w io.Writer, img image.Image) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encoder broke")
	}
	err = writeAtomic(path, createInMemoryImage(8, 8, color.White), failing)
	assert.ErrorContains(t, err, "encoder broke")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "destination must be untouched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be removed")
}

func TestSave_OverwritesExistingFile(t *testing.T) {
	path := writePNG(t, filepath.Join(t.TempDir(), "photo.png"), createInMemoryImage(8, 8, color.Black))

	_, err := Save(createInMemoryImage(8, 8, color.White), path)
	require.NoError(t, err)

	got, err := NewImageCache().Load(path)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, color.NRGBAModel.Convert(got.At(3, 3)))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

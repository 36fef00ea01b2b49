package canvas

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "drawing.png", NormalizePath("drawing", PNG))
	assert.Equal(t, "drawing.PNG", NormalizePath("drawing.PNG", PNG))
	assert.Equal(t, "drawing.jpg.png", NormalizePath("drawing.jpg", PNG))
	assert.Equal(t, "scan.tif", NormalizePath("scan.tif", TIFF))
	assert.Equal(t, "scan.tiff", NormalizePath("scan", TIFF))
	assert.Equal(t, "a/b.bmp", NormalizePath("a/b", BMP))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": PNG, "PNG": PNG, ".bmp": BMP, "tif": TIFF, "tiff": TIFF} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func paintedController(t *testing.T) *Controller {
	t.Helper()
	c := NewController(16, 8, White)
	c.SetColor(red)
	c.SetBrushSize(3)
	c.Press(2, 2)
	c.Drag(12, 5)
	c.Release()
	return c
}

func TestEncodeRoundTripIsLossless(t *testing.T) {
	c := paintedController(t)
	want := c.Surface().Snapshot()

	decoders := map[Format]func([]byte) (image.Image, error){
		PNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		BMP:  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		TIFF: func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}
	for f, decode := range decoders {
		data, err := c.ToImage(f)
		require.NoError(t, err, f)
		img, err := decode(data)
		require.NoError(t, err, f)

		require.Equal(t, want.Bounds(), img.Bounds(), f)
		for y := 0; y < want.Rect.Dy(); y++ {
			for x := 0; x < want.Rect.Dx(); x++ {
				r1, g1, b1, a1 := want.At(x, y).RGBA()
				r2, g2, b2, a2 := img.At(x, y).RGBA()
				require.Equal(t, [4]uint32{r1, g1, b1, a1}, [4]uint32{r2, g2, b2, a2}, "%s (%d,%d)", f, x, y)
			}
		}
	}
}

func TestExportWritesNormalizedPath(t *testing.T) {
	c := paintedController(t)
	dir := t.TempDir()

	written, err := c.Export(filepath.Join(dir, "sketch"), PNG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sketch.png"), written)

	f, err := os.Open(written)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, c.Surface().Bounds(), img.Bounds())
}

func TestExportFailureLeavesSurfaceIntact(t *testing.T) {
	c := paintedController(t)
	before := c.Surface().Snapshot()

	_, err := c.Export(filepath.Join(t.TempDir(), "missing", "dir", "sketch"), PNG)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.Equal(t, before.Pix, c.Surface().Snapshot().Pix)
}

func TestExportUnknownFormat(t *testing.T) {
	c := paintedController(t)
	_, err := c.Export(filepath.Join(t.TempDir(), "x"), Format("gif"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportFailureKeepsExistingDestination(t *testing.T) {
	c := paintedController(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "keep.png")
	require.NoError(t, os.Mkdir(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "inside.txt"), []byte("mine"), 0o644))

	_, err := c.Export(dest, PNG)
	assert.ErrorIs(t, err, ErrIOFailure)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	data, err := os.ReadFile(filepath.Join(dest, "inside.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))

	// No temporary file is left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportReplacesExistingFile(t *testing.T) {
	c := paintedController(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "sketch.png")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o600))

	written, err := c.Export(dest, PNG)
	require.NoError(t, err)
	assert.Equal(t, dest, written)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, c.Surface().Bounds(), img.Bounds())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

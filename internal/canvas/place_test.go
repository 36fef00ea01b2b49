package canvas

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestPlaceCentresImage(t *testing.T) {
	s, err := NewSurface(10, 10, White)
	require.NoError(t, err)

	damage := s.Place(solid(4, 4, red))
	assert.Equal(t, image.Rect(3, 3, 7, 7), damage)
	assert.Equal(t, red, s.Pixel(3, 3))
	assert.Equal(t, red, s.Pixel(6, 6))
	assert.Equal(t, White, s.Pixel(2, 3))
	assert.Equal(t, White, s.Pixel(7, 6))
}

func TestPlaceClipsOversizedImage(t *testing.T) {
	s, err := NewSurface(10, 10, White)
	require.NoError(t, err)

	damage := s.Place(solid(20, 2, blue))
	assert.Equal(t, image.Rect(0, 4, 10, 6), damage)
	assert.Equal(t, blue, s.Pixel(0, 4))
	assert.Equal(t, blue, s.Pixel(9, 5))
	assert.Equal(t, White, s.Pixel(0, 3))
}

func TestPlaceKeepsTransparentPixels(t *testing.T) {
	s, err := NewSurface(4, 4, White)
	require.NoError(t, err)

	s.Place(solid(4, 4, Transparent))
	assert.Equal(t, White, s.Pixel(1, 1))
}

func TestDecodeLosslessFormats(t *testing.T) {
	for _, f := range []Format{PNG, BMP, TIFF} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, solid(3, 2, red), f))

		img, err := Decode(&buf)
		require.NoError(t, err, f)
		assert.Equal(t, image.Pt(3, 2), img.Bounds().Size())
	}

	_, err := Decode(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestControllerPlaceImageCreatesSurface(t *testing.T) {
	c := NewController(6, 6, White)
	damage := c.PlaceImage(solid(2, 2, red))
	assert.Equal(t, image.Rect(2, 2, 4, 4), damage)
	require.NotNil(t, c.Surface())
	assert.Equal(t, red, c.Surface().Pixel(2, 2))
}

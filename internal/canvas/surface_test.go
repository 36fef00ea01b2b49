package canvas

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func TestNewSurfaceRejectsNonPositiveDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		s, err := NewSurface(dims[0], dims[1], White)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrInvalidDimension)
	}
}

func TestNewSurfaceFillsBackground(t *testing.T) {
	s, err := NewSurface(7, 3, White)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Width())
	assert.Equal(t, 3, s.Height())
	assert.Len(t, s.img.Pix, 7*3*4)
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, White, s.Pixel(x, y))
		}
	}

	s, err = NewSurface(2, 2, Transparent)
	require.NoError(t, err)
	assert.Equal(t, Transparent, s.Pixel(1, 1))
}

func TestSetThenGetPixel(t *testing.T) {
	s, err := NewSurface(4, 4, White)
	require.NoError(t, err)

	c := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			s.SetPixel(x, y, c)
			assert.Equal(t, c, s.Pixel(x, y))
		}
	}
}

func TestOutOfRangeAccessIsNoop(t *testing.T) {
	s, err := NewSurface(2, 2, White)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.SetPixel(-1, 0, red)
		s.SetPixel(2, 0, red)
		s.SetPixel(0, 2, red)
	})
	assert.Equal(t, Transparent, s.Pixel(-1, 0))
	assert.Equal(t, Transparent, s.Pixel(5, 5))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, White, s.Pixel(x, y))
		}
	}
}

func TestFillAll(t *testing.T) {
	s, err := NewSurface(5, 9, White)
	require.NoError(t, err)
	s.SetPixel(2, 2, red)

	s.Fill(blue)
	for y := 0; y < 9; y++ {
		for x := 0; x < 5; x++ {
			require.Equal(t, blue, s.Pixel(x, y))
		}
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	s, err := NewSurface(4, 3, White)
	require.NoError(t, err)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			s.SetPixel(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}

	grown := s.Resize(6, 5)
	assert.Equal(t, 6, grown.Width())
	assert.Equal(t, 5, grown.Height())
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			if x < 4 && y < 3 {
				assert.Equal(t, s.Pixel(x, y), grown.Pixel(x, y))
			} else {
				assert.Equal(t, White, grown.Pixel(x, y))
			}
		}
	}

	shrunk := s.Resize(2, 5)
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, s.Pixel(x, y), shrunk.Pixel(x, y))
		}
	}
	assert.Equal(t, White, shrunk.Pixel(1, 4))
}

func TestResizeCoercesNonPositive(t *testing.T) {
	s, err := NewSurface(3, 3, White)
	require.NoError(t, err)
	s.SetPixel(0, 0, red)

	tiny := s.Resize(0, -4)
	assert.Equal(t, 1, tiny.Width())
	assert.Equal(t, 1, tiny.Height())
	assert.Equal(t, red, tiny.Pixel(0, 0))
}

func TestSnapshotIsIndependent(t *testing.T) {
	s, err := NewSurface(2, 2, White)
	require.NoError(t, err)

	snap := s.Snapshot()
	s.SetPixel(0, 0, red)
	assert.Equal(t, White, snap.NRGBAAt(0, 0))
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#121212")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}, c)

	c, err = ParseHex("5c1a1a80")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x5c, G: 0x1a, B: 0x1a, A: 0x80}, c)
	assert.Equal(t, "#5c1a1a80", Hex(c))
	assert.Equal(t, "#ffffff", Hex(White))

	_, err = ParseHex("#12")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

package canvas

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrInvalidDimension is returned when a surface is requested with a non-positive extent.
var ErrInvalidDimension = errors.New("canvas: invalid dimension")

// Surface is a mutable RGBA pixel buffer with a default background colour.
// It is not safe for concurrent use; a surface belongs to one editor session.
type Surface struct {
	img        *image.NRGBA
	background color.NRGBA
}

// NewSurface creates a width×height surface filled with background.
func NewSurface(width, height int, background color.NRGBA) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimension
	}
	s := &Surface{
		img:        image.NewNRGBA(image.Rect(0, 0, width, height)),
		background: background,
	}
	s.Fill(background)
	return s, nil
}

// Width returns the width of the surface.
func (s *Surface) Width() int {
	return s.img.Rect.Dx()
}

// Height returns the height of the surface.
func (s *Surface) Height() int {
	return s.img.Rect.Dy()
}

// Background returns the colour new and cleared pixels take.
func (s *Surface) Background() color.NRGBA {
	return s.background
}

// InBounds reports whether (x, y) addresses a pixel of the surface.
func (s *Surface) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width() && y < s.Height()
}

// Pixel returns the colour at (x, y). Out-of-range reads return Transparent.
func (s *Surface) Pixel(x, y int) color.NRGBA {
	if !s.InBounds(x, y) {
		return Transparent
	}
	return s.img.NRGBAAt(x, y)
}

// SetPixel sets the colour at (x, y). Out-of-range writes are ignored.
func (s *Surface) SetPixel(x, y int, c color.NRGBA) {
	if !s.InBounds(x, y) {
		return
	}
	s.img.SetNRGBA(x, y, c)
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c color.NRGBA) {
	pix := s.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, c.A
	// Double the filled prefix until the buffer is full.
	for filled := 4; filled < len(pix); filled *= 2 {
		copy(pix[filled:], pix[:filled])
	}
}

// Resize returns a new surface of the given size whose overlapping top-left region
// equals the receiver's content. Remaining pixels take the background colour.
// Non-positive extents are coerced to 1.
func (s *Surface) Resize(width, height int) *Surface {
	width = max(width, 1)
	height = max(height, 1)
	// Dimensions are positive here, so the error is impossible.
	resized, _ := NewSurface(width, height, s.background)
	draw.Draw(resized.img, s.img.Bounds(), s.img, image.Point{}, draw.Src)
	return resized
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.NRGBA {
	img := image.NewNRGBA(s.img.Rect)
	copy(img.Pix, s.img.Pix)
	return img
}

// Bounds implements the image.Image interface.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Rect
}

// At implements the image.Image interface.
func (s *Surface) At(x, y int) color.Color {
	return s.Pixel(x, y)
}

// ColorModel implements the image.Image interface.
func (s *Surface) ColorModel() color.Model {
	return color.NRGBAModel
}

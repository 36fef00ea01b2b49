package canvas

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"io"

	"golang.org/x/image/draw"
)

// ErrUnsupportedImage is returned when inserted bytes are not a decodable image.
var ErrUnsupportedImage = errors.New("canvas: unsupported image")

// Decode reads a PNG, JPEG, GIF, BMP or TIFF image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return img, nil
}

// Place composites img over the surface, centred, with its top-left corner kept
// inside the surface. Parts extending past the right or bottom edge are clipped.
func (s *Surface) Place(img image.Image) image.Rectangle {
	size := img.Bounds().Size()
	origin := image.Pt(max(0, (s.Width()-size.X)/2), max(0, (s.Height()-size.Y)/2))
	area := image.Rectangle{Min: origin, Max: origin.Add(size)}.Intersect(s.Bounds())
	if area.Empty() {
		return image.Rectangle{}
	}
	draw.Draw(s.img, area, img, img.Bounds().Min, draw.Over)
	return area
}

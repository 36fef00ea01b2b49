package canvas

import (
	"image"
	"image/color"
)

// FloodFill recolours the 4-connected region of pixels matching the colour at (x, y).
// It returns the number of pixels written and the area they cover.
//
// Recolouring a pixel is what marks it visited, so each pixel is written at most once
// and a call never writes more than Width*Height pixels. A seed outside the surface or a
// seed already coloured fill is a no-op.
func FloodFill(s *Surface, x, y int, fill color.NRGBA) (int, image.Rectangle) {
	if !s.InBounds(x, y) {
		return 0, image.Rectangle{}
	}
	target := s.Pixel(x, y)
	if target == fill {
		return 0, image.Rectangle{}
	}

	written := 0
	damage := image.Rectangle{}
	stack := []image.Point{{X: x, Y: y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !s.InBounds(p.X, p.Y) || s.Pixel(p.X, p.Y) != target {
			continue
		}
		s.SetPixel(p.X, p.Y, fill)
		written++
		damage = damage.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return written, damage
}

package canvas

import (
	"image"
	"image/color"
	"math"
)

// Mode selects what a brush writes.
type Mode int

const (
	// Draw paints with the brush colour at full opacity.
	Draw Mode = iota
	// Erase writes the surface background. It is destructive, not an undo.
	Erase
)

// Brush describes the geometry and ink of a stroke.
type Brush struct {
	Diameter int
	Color    color.NRGBA
	Mode     Mode
}

func (b Brush) ink(s *Surface) color.NRGBA {
	if b.Mode == Erase {
		return s.Background()
	}
	return b.Color
}

// Dab stamps a filled disc of the brush diameter centred at p and returns the damaged area.
func Dab(s *Surface, p image.Point, b Brush) image.Rectangle {
	return capsule(s, p, p, b)
}

// Line draws the round-capped segment from p0 to p1 and returns the damaged area.
func Line(s *Surface, p0, p1 image.Point, b Brush) image.Rectangle {
	return capsule(s, p0, p1, b)
}

// capsule writes every pixel whose centre lies within Diameter/2 of the segment p0-p1.
// Pixels are written opaquely, so later segments replace earlier ones.
func capsule(s *Surface, p0, p1 image.Point, b Brush) image.Rectangle {
	r := float64(max(b.Diameter, 1)) / 2
	r2 := r * r
	reach := int(math.Ceil(r))

	area := image.Rect(
		min(p0.X, p1.X)-reach, min(p0.Y, p1.Y)-reach,
		max(p0.X, p1.X)+reach+1, max(p0.Y, p1.Y)+reach+1,
	).Intersect(s.Bounds())
	if area.Empty() {
		return image.Rectangle{}
	}

	ink := b.ink(s)
	x0, y0 := float64(p0.X), float64(p0.Y)
	dx, dy := float64(p1.X-p0.X), float64(p1.Y-p0.Y)
	len2 := dx*dx + dy*dy

	damage := image.Rectangle{}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			px, py := float64(x)-x0, float64(y)-y0
			t := 0.0
			if len2 > 0 {
				t = math.Max(0, math.Min(1, (px*dx+py*dy)/len2))
			}
			ex, ey := px-t*dx, py-t*dy
			if ex*ex+ey*ey > r2 {
				continue
			}
			s.SetPixel(x, y, ink)
			damage = damage.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return damage
}

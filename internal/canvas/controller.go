package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Tool is the active canvas tool.
type Tool int

const (
	Pen Tool = iota
	Eraser
	Fill
)

func (t Tool) String() string {
	switch t {
	case Eraser:
		return "eraser"
	case Fill:
		return "fill"
	default:
		return "pen"
	}
}

// ParseTool maps a tool name to a Tool.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen":
		return Pen, nil
	case "eraser":
		return Eraser, nil
	case "fill":
		return Fill, nil
	}
	return Pen, fmt.Errorf("unknown tool %q", s)
}

// State is the pointer state of a controller.
type State int

const (
	Idle State = iota
	Stroking
)

const (
	MinBrushSize     = 1
	MaxBrushSize     = 50
	DefaultBrushSize = 5
)

// Controller owns the drawing layer of one note and turns pointer events into
// surface mutations. Every mutating method returns the damaged area so the caller
// can request a redraw of just that region.
type Controller struct {
	surface    *Surface
	background color.NRGBA
	viewport   image.Point

	tool     Tool
	color    color.NRGBA
	diameter int

	state  State
	anchor image.Point
}

// NewController creates a controller for a visible area of width×height.
// The surface itself is allocated on the first paint request.
func NewController(width, height int, background color.NRGBA) *Controller {
	return &Controller{
		background: background,
		viewport:   image.Pt(max(width, 1), max(height, 1)),
		tool:       Pen,
		color:      Black,
		diameter:   DefaultBrushSize,
	}
}

// Resize records a new visible area. An existing surface is resized keeping its content.
func (c *Controller) Resize(width, height int) {
	c.viewport = image.Pt(max(width, 1), max(height, 1))
	if c.surface != nil && (c.surface.Width() != c.viewport.X || c.surface.Height() != c.viewport.Y) {
		c.surface = c.surface.Resize(c.viewport.X, c.viewport.Y)
	}
}

func (c *Controller) ensureSurface() *Surface {
	if c.surface == nil {
		// The viewport is clamped positive, so creation cannot fail.
		c.surface, _ = NewSurface(c.viewport.X, c.viewport.Y, c.background)
	}
	return c.surface
}

// Surface returns the drawing surface, or nil if nothing has been painted yet.
func (c *Controller) Surface() *Surface {
	return c.surface
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Tool() Tool { return c.tool }

func (c *Controller) SetTool(t Tool) { c.tool = t }

func (c *Controller) Color() color.NRGBA { return c.color }

func (c *Controller) SetColor(col color.NRGBA) { c.color = col }

func (c *Controller) BrushSize() int { return c.diameter }

// SetBrushSize sets the brush diameter, clamped to [MinBrushSize, MaxBrushSize].
func (c *Controller) SetBrushSize(d int) {
	c.diameter = min(max(d, MinBrushSize), MaxBrushSize)
}

func (c *Controller) brush() Brush {
	b := Brush{Diameter: c.diameter, Color: c.color}
	if c.tool == Eraser {
		b.Mode = Erase
	}
	return b
}

// Press handles a pointer press. The fill tool acts immediately and stays idle;
// pen and eraser stamp a dab and start a stroke.
func (c *Controller) Press(x, y int) image.Rectangle {
	s := c.ensureSurface()
	if c.tool == Fill {
		c.state = Idle
		_, damage := FloodFill(s, x, y, c.color)
		return damage
	}
	c.anchor = image.Pt(x, y)
	c.state = Stroking
	return Dab(s, c.anchor, c.brush())
}

// Drag extends the current stroke to (x, y). It is ignored while idle.
func (c *Controller) Drag(x, y int) image.Rectangle {
	if c.state != Stroking {
		return image.Rectangle{}
	}
	p := image.Pt(x, y)
	damage := Line(c.ensureSurface(), c.anchor, p, c.brush())
	c.anchor = p
	return damage
}

// Release ends the current stroke.
func (c *Controller) Release() {
	c.state = Idle
	c.anchor = image.Point{}
}

// Clear resets every pixel to the background colour.
func (c *Controller) Clear() image.Rectangle {
	s := c.ensureSurface()
	s.Fill(c.background)
	return s.Bounds()
}

// PlaceImage draws img centred on the canvas and returns the damaged area.
func (c *Controller) PlaceImage(img image.Image) image.Rectangle {
	return c.ensureSurface().Place(img)
}

// ToImage returns the current drawing encoded in format f.
func (c *Controller) ToImage(f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c.ensureSurface().img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export writes the drawing to path in format f and returns the normalised path.
func (c *Controller) Export(path string, f Format) (string, error) {
	return c.ensureSurface().Export(path, f)
}

// Close releases the surface when the owning editor closes.
func (c *Controller) Close() {
	c.surface = nil
	c.Release()
}

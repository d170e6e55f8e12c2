package pixelcloud

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Shape selects the primitive a renderer instances per point. The raster
// and SVG previews draw its 2D silhouette.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeCube
	ShapeOctahedron
)

var shapeNames = [...]string{"sphere", "cube", "octahedron"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

func ParseShape(s string) (Shape, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

type PreviewOptions struct {
	// Output size in pixels.
	Width, Height int
	// Border kept clear around the projected cloud.
	Margin int
	// Silhouette drawn per point.
	Shape Shape
	// Point radius in output pixels.
	Radius int
	// Canvas color behind the cloud.
	Background color.RGBA
}

func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		Width:      800,
		Height:     800,
		Margin:     24,
		Shape:      ShapeSphere,
		Radius:     3,
		Background: color.RGBA{R: 16, G: 16, B: 22, A: 255},
	}
}

// normalized guards degenerate sizes so a zero value stays drawable.
func (o PreviewOptions) normalized() (width, height, radius int) {
	def := DefaultPreviewOptions()
	width, height, radius = o.Width, o.Height, o.Radius
	if width <= 0 {
		width = def.Width
	}
	if height <= 0 {
		height = def.Height
	}
	if radius <= 0 {
		radius = def.Radius
	}
	return width, height, radius
}

// projection maps cloud space onto the image plane, world +Y up.
type projection struct {
	scale  float64
	cx, cy float64
	ox, oy float64
}

func fitProjection(lo, hi r3.Vec, width, height, margin int) projection {
	availW := max(float64(width-2*margin), 1)
	availH := max(float64(height-2*margin), 1)
	scale := math.Inf(1)
	if span := hi.X - lo.X; span > 0 {
		scale = availW / span
	}
	if span := hi.Y - lo.Y; span > 0 {
		scale = min(scale, availH/span)
	}
	if math.IsInf(scale, 1) {
		// Single point or a degenerate span, any scale will do.
		scale = 1
	}
	return projection{
		scale: scale,
		cx:    (lo.X + hi.X) / 2,
		cy:    (lo.Y + hi.Y) / 2,
		ox:    float64(width) / 2,
		oy:    float64(height) / 2,
	}
}

func (p projection) apply(v r3.Vec) (x, y int) {
	return int(math.Round(p.ox + (v.X-p.cx)*p.scale)),
		int(math.Round(p.oy - (v.Y-p.cy)*p.scale))
}

// sortByDepth orders a copy of the points far to near for painter-style
// drawing. The cloud itself stays untouched.
func sortByDepth(points []Point) []Point {
	out := slices.Clone(points)
	slices.SortFunc(out, func(a, b Point) int {
		if a.Pos.Z < b.Pos.Z {
			return -1
		}
		if a.Pos.Z > b.Pos.Z {
			return 1
		}
		return 0
	})
	return out
}

// Preview renders the cloud into an orthographic front-view raster.
// Points are splatted far to near with the configured silhouette.
func (c *Cloud) Preview(opt PreviewOptions) *image.RGBA {
	width, height, radius := opt.normalized()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, opt.Background)
		}
	}
	if c.Len() == 0 {
		return img
	}
	lo, hi := c.Bounds()
	proj := fitProjection(lo, hi, width, height, opt.Margin)
	for _, p := range sortByDepth(c.Points) {
		x, y := proj.apply(p.Pos)
		col := color.RGBA{
			R: channelByte(p.Col.R),
			G: channelByte(p.Col.G),
			B: channelByte(p.Col.B),
			A: 255,
		}
		splat(img, x, y, radius, opt.Shape, col)
	}
	return img
}

// splat stamps one filled silhouette, clipped to the image.
func splat(img *image.RGBA, cx, cy, radius int, shape Shape, col color.RGBA) {
	b := img.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			switch shape {
			case ShapeSphere:
				if dx*dx+dy*dy > radius*radius {
					continue
				}
			case ShapeOctahedron:
				if absInt(dx)+absInt(dy) > radius {
					continue
				}
			}
			x, y := cx+dx, cy+dy
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			img.SetRGBA(x, y, col)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package pixelcloud

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG draws the cloud as a scalable 2D scatter using the same
// orthographic projection and painter order as Preview.
func (c *Cloud) WriteSVG(w io.Writer, opt PreviewOptions) {
	width, height, radius := opt.normalized()
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fillStyle(opt.Background.R, opt.Background.G, opt.Background.B))
	if c.Len() > 0 {
		lo, hi := c.Bounds()
		proj := fitProjection(lo, hi, width, height, opt.Margin)
		for _, p := range sortByDepth(c.Points) {
			x, y := proj.apply(p.Pos)
			style := fillStyle(channelByte(p.Col.R), channelByte(p.Col.G), channelByte(p.Col.B))
			switch opt.Shape {
			case ShapeCube:
				canvas.Square(x-radius, y-radius, 2*radius, style)
			case ShapeOctahedron:
				canvas.Polygon(
					[]int{x, x + radius, x, x - radius},
					[]int{y - radius, y, y + radius, y},
					style)
			default:
				canvas.Circle(x, y, radius, style)
			}
		}
	}
	canvas.End()
}

func fillStyle(r, g, b uint8) string {
	return fmt.Sprintf("fill:#%02x%02x%02x", r, g, b)
}

package pixelcloud

import (
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Point is one sampled pixel: a world-space position and its graded color.
type Point struct {
	Pos r3.Vec
	Col colorful.Color
}

// Cloud is the ordered point set of one sampler pass. It is replaced as a
// whole on every resample and never mutated in place, so holders of a
// *Cloud can keep reading it without coordination.
type Cloud struct {
	Points []Point
}

func (c *Cloud) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Points)
}

// Bounds returns the axis-aligned extent. Both corners are zero for an
// empty cloud.
func (c *Cloud) Bounds() (lo, hi r3.Vec) {
	if c.Len() == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	lo = c.Points[0].Pos
	hi = lo
	for _, p := range c.Points[1:] {
		lo.X = min(lo.X, p.Pos.X)
		lo.Y = min(lo.Y, p.Pos.Y)
		lo.Z = min(lo.Z, p.Pos.Z)
		hi.X = max(hi.X, p.Pos.X)
		hi.Y = max(hi.Y, p.Pos.Y)
		hi.Z = max(hi.Z, p.Pos.Z)
	}
	return lo, hi
}

// Centroid is the unweighted mean position, zero for an empty cloud.
func (c *Cloud) Centroid() r3.Vec {
	if c.Len() == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, p := range c.Points {
		sum = r3.Add(sum, p.Pos)
	}
	return r3.Scale(1/float64(c.Len()), sum)
}

// LumaMeanStdDev summarizes the brightness distribution of the point
// colors (plain channel average, matching the depth luma).
func (c *Cloud) LumaMeanStdDev() (mean, std float64) {
	if c.Len() == 0 {
		return 0, 0
	}
	if c.Len() == 1 {
		p := c.Points[0]
		return (p.Col.R + p.Col.G + p.Col.B) / 3, 0
	}
	lumas := make([]float64, c.Len())
	for i, p := range c.Points {
		lumas[i] = (p.Col.R + p.Col.G + p.Col.B) / 3
	}
	return stat.MeanStdDev(lumas, nil)
}

// SnapToPalette returns a copy of the cloud with every color replaced by
// the nearest palette entry in Lab space. Positions are untouched.
func (c *Cloud) SnapToPalette(palette []colorful.Color) (*Cloud, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if c.Len() == 0 {
		return &Cloud{}, nil
	}
	out := &Cloud{Points: slices.Clone(c.Points)}
	for i := range out.Points {
		col := out.Points[i].Col.Clamped()
		best := 0
		bestD := col.DistanceLab(palette[0])
		for j := 1; j < len(palette); j++ {
			if d := col.DistanceLab(palette[j]); d < bestD {
				bestD = d
				best = j
			}
		}
		out.Points[i].Col = palette[best]
	}
	return out, nil
}

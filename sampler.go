package pixelcloud

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// worldScale maps pixel grid distances into the conventional viewing volume.
const worldScale = 0.02

type Options struct {
	// Source-pixel stride between samples.
	// 1 keeps every pixel; cost falls quadratically as it grows.
	// Finite values below 1 are clamped to 1.
	Step float64
	// Spacing multiplier between neighboring points.
	// Also the point scale a renderer should use.
	ParticleSize float64
	// Depth range mapped from per-pixel luminance.
	// 0 flattens the cloud onto the XY plane.
	ZExtrusion float64
	// Minimum alpha for a pixel to emit a point; lower alphas are skipped.
	AlphaThreshold uint8
	// Color grading applied to every sampled pixel.
	Mode Mode
	// Gain multiplied in after the grading. 1 keeps levels unchanged.
	Brightness float64
	// Channel-wise multiplier. White (1,1,1) is the identity.
	Tint colorful.Color
}

func DefaultOptions() Options {
	return Options{
		Step:           2,
		ParticleSize:   1,
		ZExtrusion:     0.5,
		AlphaThreshold: 20,
		Mode:           ModeOriginal,
		Brightness:     1,
		Tint:           colorful.Color{R: 1, G: 1, B: 1},
	}
}

// OptionsFromSize derives a stride that caps the worst-case point count
// for the given raster size.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	pixels := size.X * size.Y
	maxPoints := 60000
	opt.Step = 1
	if pixels > maxPoints {
		opt.Step = math.Ceil(math.Sqrt(float64(pixels) / float64(maxPoints)))
	}
	return opt
}

// Validate reports the first constraint violation, if any. Sample and
// SampleParallel run it before touching the raster.
func (o Options) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"step", o.Step},
		{"particle size", o.ParticleSize},
		{"z extrusion", o.ZExtrusion},
		{"brightness", o.Brightness},
		{"tint red", o.Tint.R},
		{"tint green", o.Tint.G},
		{"tint blue", o.Tint.B},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("options: %s is not finite", f.name)
		}
	}
	if o.ParticleSize <= 0 {
		return fmt.Errorf("options: particle size must be positive")
	}
	if o.ZExtrusion < 0 {
		return fmt.Errorf("options: z extrusion must not be negative")
	}
	if o.Brightness < 0 {
		return fmt.Errorf("options: brightness must not be negative")
	}
	if o.Mode < 0 || int(o.Mode) >= len(modeNames) {
		return fmt.Errorf("options: unknown color mode %d", int(o.Mode))
	}
	if o.Tint.R < 0 || o.Tint.R > 1 || o.Tint.G < 0 || o.Tint.G > 1 || o.Tint.B < 0 || o.Tint.B > 1 {
		return fmt.Errorf("options: tint channels must stay in [0,1]")
	}
	return nil
}

// stride is the effective integer step. Finite values below 1 clamp to 1.
func (o Options) stride() int {
	if o.Step > 1<<30 {
		return 1 << 30
	}
	return max(1, int(o.Step))
}

// Sample scans the raster row-major at the configured stride and turns
// every pixel that passes the alpha filter into one colored point.
// Identical raster and options always produce the identical cloud.
func Sample(r *Raster, opt Options) (*Cloud, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if r == nil || r.W <= 0 || r.H <= 0 {
		return &Cloud{}, nil
	}
	step := opt.stride()
	cols := (r.W + step - 1) / step
	rows := (r.H + step - 1) / step
	points := make([]Point, 0, cols*rows)
	for y := 0; y < r.H; y += step {
		points = sampleRow(r, opt, step, y, points)
	}
	return &Cloud{Points: points}, nil
}

// sampleRow appends the points of one raster row to dst, preserving
// left-to-right order.
func sampleRow(r *Raster, opt Options, step, y int, dst []Point) []Point {
	halfW := float64(r.W) / 2
	halfH := float64(r.H) / 2
	for x := 0; x < r.W; x += step {
		off := rasterOffset(r.W, x, y)
		if r.Pix[off+3] < opt.AlphaThreshold {
			continue
		}
		pr := r.Pix[off]
		pg := r.Pix[off+1]
		pb := r.Pix[off+2]
		// Plain channel average for depth, unlike the perceptual
		// weighting inside the color grading.
		luma := (float64(pr) + float64(pg) + float64(pb)) / 765
		dst = append(dst, Point{
			Pos: r3.Vec{
				X: (float64(x) - halfW) * opt.ParticleSize * worldScale,
				Y: -(float64(y) - halfH) * opt.ParticleSize * worldScale,
				Z: luma * opt.ZExtrusion * worldScale,
			},
			Col: TransformColor(pr, pg, pb, opt.Mode, opt.Brightness, opt.Tint),
		})
	}
	return dst
}

// SuggestBrightness proposes a gain that pulls the raster's mean visible
// luminance toward mid gray. Advisory only, nothing applies it implicitly.
func SuggestBrightness(r *Raster) float64 {
	if r == nil || r.W <= 0 || r.H <= 0 {
		return 1
	}
	// Subsample large rasters, the estimate does not need every pixel.
	maxSamples := 10000
	step := 1
	if r.W*r.H > maxSamples {
		step = int(math.Sqrt(float64(r.W*r.H)/float64(maxSamples))) + 1
	}
	lumas := make([]float64, 0, min(r.W*r.H, maxSamples))
	for y := 0; y < r.H; y += step {
		for x := 0; x < r.W; x += step {
			off := rasterOffset(r.W, x, y)
			if r.Pix[off+3] == 0 {
				continue
			}
			lumas = append(lumas, (float64(r.Pix[off])+float64(r.Pix[off+1])+float64(r.Pix[off+2]))/765)
		}
	}
	if len(lumas) == 0 {
		return 1
	}
	mean := stat.Mean(lumas, nil)
	if mean < 1e-6 {
		return 3
	}
	return min(3, max(0.25, 0.5/mean))
}

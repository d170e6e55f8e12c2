package utils

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextOptions struct {
	// Glyph size in points at 72 DPI, so size equals pixel height.
	Size float64
	// Transparent border around the rendered string, in pixels.
	Padding int
	// Fill color of the glyphs.
	Color color.NRGBA
	// TTF font data. Nil selects the bundled Go Regular face.
	TTF []byte
}

func DefaultTextOptions() TextOptions {
	return TextOptions{
		Size:    96,
		Padding: 8,
		Color:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// RasterizeText renders a single line of text onto a transparent
// background. Only the glyph pixels carry alpha, which is exactly what an
// alpha-threshold sampler wants to see.
func RasterizeText(text string, opt TextOptions) (*image.NRGBA, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	if opt.Size <= 0 {
		opt.Size = DefaultTextOptions().Size
	}
	if opt.Padding < 0 {
		opt.Padding = 0
	}
	ttf := opt.TTF
	if ttf == nil {
		ttf = goregular.TTF
	}
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    opt.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil() + 2*opt.Padding
	height := (metrics.Ascent + metrics.Descent).Ceil() + 2*opt.Padding
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opt.Color),
		Face: face,
		Dot:  fixed.P(opt.Padding, opt.Padding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	return img, nil
}

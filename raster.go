package pixelcloud

import (
	"image"
	"image/color"
	"image/draw"
)

// Raster is the pixel input of the sampler: a row-major RGBA byte buffer
// with straight (non-premultiplied) alpha. Samplers treat it as read-only.
type Raster struct {
	W, H int
	Pix  []uint8 // Interleaved RGBA, len = W*H*4
}

// NewRaster returns a zeroed, fully transparent raster.
// Negative dimensions collapse to 0.
func NewRaster(w, h int) *Raster {
	w = max(w, 0)
	h = max(h, 0)
	return &Raster{W: w, H: h, Pix: make([]uint8, w*h*4)}
}

// RasterFromImage copies img into a raster. NRGBA sources are copied row
// by row; anything else goes through a straight-alpha conversion first so
// semi-transparent pixels keep their original channel values.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	if r.W == 0 || r.H == 0 {
		return r
	}
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
		copy(r.Pix, src.Pix)
		return r
	}
	rowLen := r.W * 4
	for y := range r.H {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(r.Pix[y*rowLen:(y+1)*rowLen], src.Pix[off:off+rowLen])
	}
	return r
}

func (r *Raster) At(x, y int) color.NRGBA {
	off := rasterOffset(r.W, x, y)
	return color.NRGBA{R: r.Pix[off], G: r.Pix[off+1], B: r.Pix[off+2], A: r.Pix[off+3]}
}

func (r *Raster) Set(x, y int, c color.NRGBA) {
	off := rasterOffset(r.W, x, y)
	r.Pix[off] = c.R
	r.Pix[off+1] = c.G
	r.Pix[off+2] = c.B
	r.Pix[off+3] = c.A
}

func rasterOffset(w, x, y int) int {
	return (y*w + x) * 4
}

package pixelcloud

import (
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCloud_Preview_EmptyCloud(t *testing.T) {
	opt := PreviewOptions{
		Width:      32,
		Height:     16,
		Margin:     2,
		Radius:     1,
		Background: color.RGBA{R: 9, G: 8, B: 7, A: 255},
	}
	img := (&Cloud{}).Preview(opt)
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("unexpected size %dx%d", b.Dx(), b.Dy())
	}
	for _, pt := range [][2]int{{0, 0}, {31, 0}, {0, 15}, {31, 15}, {16, 8}} {
		if got := img.RGBAAt(pt[0], pt[1]); got != opt.Background {
			t.Errorf("pixel %v = %v, want background", pt, got)
		}
	}
}

func TestCloud_Preview_SinglePointCentered(t *testing.T) {
	c := &Cloud{Points: []Point{{
		Pos: r3.Vec{X: 5, Y: -3, Z: 0.2},
		Col: colorful.Color{R: 1, G: 1, B: 1},
	}}}
	opt := PreviewOptions{
		Width:      64,
		Height:     64,
		Margin:     8,
		Shape:      ShapeSphere,
		Radius:     1,
		Background: color.RGBA{A: 255},
	}
	img := c.Preview(opt)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := img.RGBAAt(32, 32); got != white {
		t.Errorf("center = %v, want white", got)
	}
	if got := img.RGBAAt(0, 0); got != opt.Background {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestCloud_Preview_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		shape  Shape
		dx, dy int
		filled bool
	}{
		{"cube fills its corner", ShapeCube, 3, 3, true},
		{"cube fills its edge", ShapeCube, 3, 0, true},
		{"sphere misses the corner", ShapeSphere, 3, 3, false},
		{"sphere fills its edge", ShapeSphere, 3, 0, true},
		{"sphere fills the interior", ShapeSphere, 2, 2, true},
		{"octahedron misses the diagonal", ShapeOctahedron, 2, 2, false},
		{"octahedron fills its tip", ShapeOctahedron, 3, 0, true},
		{"octahedron fills the interior", ShapeOctahedron, 1, 1, true},
	}
	c := &Cloud{Points: []Point{{Col: colorful.Color{R: 1}}}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := c.Preview(PreviewOptions{
				Width:      32,
				Height:     32,
				Margin:     4,
				Shape:      tt.shape,
				Radius:     3,
				Background: color.RGBA{A: 255},
			})
			got := img.RGBAAt(16+tt.dx, 16+tt.dy)
			want := color.RGBA{R: 255, A: 255}
			if tt.filled && got != want {
				t.Errorf("pixel (%d,%d) = %v, want point color", tt.dx, tt.dy, got)
			}
			if !tt.filled && got == want {
				t.Errorf("pixel (%d,%d) should stay background", tt.dx, tt.dy)
			}
		})
	}
}

func TestCloud_Preview_DepthOrder(t *testing.T) {
	// Same projected position, the nearer point must paint last.
	c := &Cloud{Points: []Point{
		{Pos: r3.Vec{Z: 1}, Col: colorful.Color{B: 1}},
		{Pos: r3.Vec{Z: 0}, Col: colorful.Color{R: 1}},
	}}
	img := c.Preview(PreviewOptions{Width: 32, Height: 32, Radius: 2, Shape: ShapeCube})
	want := color.RGBA{B: 255, A: 255}
	if got := img.RGBAAt(16, 16); got != want {
		t.Errorf("center = %v, want the near point's color", got)
	}
}

func TestCloud_Preview_RespectsMargin(t *testing.T) {
	cloud, err := Sample(testPattern(30, 20), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bg := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	img := cloud.Preview(PreviewOptions{
		Width:      100,
		Height:     100,
		Margin:     10,
		Radius:     1,
		Background: bg,
	})
	// Margin 10 and radius 1 leave the outer five-pixel frame untouched.
	for i := range 100 {
		for _, pt := range [][2]int{{i, 0}, {i, 4}, {0, i}, {4, i}, {i, 99}, {i, 95}, {99, i}, {95, i}} {
			if got := img.RGBAAt(pt[0], pt[1]); got != bg {
				t.Fatalf("pixel %v = %v, want background", pt, got)
			}
		}
	}
}

func TestCloud_Preview_ZeroOptions(t *testing.T) {
	img := (&Cloud{}).Preview(PreviewOptions{})
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 800 {
		t.Errorf("unexpected size %dx%d", b.Dx(), b.Dy())
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Shape
		wantErr  bool
	}{
		{"sphere", "sphere", ShapeSphere, false},
		{"cube", "cube", ShapeCube, false},
		{"octahedron", "octahedron", ShapeOctahedron, false},
		{"mixed case", "Cube", ShapeCube, false},
		{"padded", "  sphere ", ShapeSphere, false},
		{"unknown", "pyramid", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShape(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestShape_String(t *testing.T) {
	if ShapeOctahedron.String() != "octahedron" {
		t.Errorf("octahedron String = %q", ShapeOctahedron.String())
	}
	if Shape(42).String() != "unknown" {
		t.Errorf("out-of-range String = %q", Shape(42).String())
	}
}

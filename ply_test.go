package pixelcloud

import (
	"math"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

const emptyPLY = `ply
format ascii 1.0
element vertex 0
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
end_header
`

func TestCloud_PLY_EmptyHeader(t *testing.T) {
	got := string((&Cloud{}).PLY())
	if got != emptyPLY {
		t.Errorf("Expected %q, got %q", emptyPLY, got)
	}
	var nilCloud *Cloud
	if string(nilCloud.PLY()) != emptyPLY {
		t.Error("nil cloud should still emit the empty header")
	}
}

func TestCloud_PLY_VertexFormatting(t *testing.T) {
	c := &Cloud{Points: []Point{
		{
			Pos: r3.Vec{X: 1.0 / 3, Y: -0.5, Z: 0},
			Col: colorful.Color{R: 0.5, G: 1, B: 0},
		},
		{
			Pos: r3.Vec{X: 1.23456, Y: 2, Z: -0.0004},
			Col: colorful.Color{R: 1.5, G: -0.2, B: 0.999},
		},
	}}
	lines := strings.Split(strings.TrimSuffix(string(c.PLY()), "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("Expected 12 lines, got %d", len(lines))
	}
	if lines[2] != "element vertex 2" {
		t.Errorf("vertex count line = %q", lines[2])
	}
	// floor(0.5*255) = 127, full green = 255, clamped to 0.
	if lines[10] != "0.333 -0.500 0.000 127 255 0" {
		t.Errorf("vertex 0 = %q", lines[10])
	}
	// Out-of-range channels clamp, 0.999 floors to 254.
	if lines[11] != "1.235 2.000 -0.000 255 0 254" {
		t.Errorf("vertex 1 = %q", lines[11])
	}
}

func TestReadPLY_RoundTrip(t *testing.T) {
	r := testPattern(24, 18)
	opt := DefaultOptions()
	opt.Mode = ModeGolden
	original, err := Sample(r, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original.Len() == 0 {
		t.Fatal("expected points")
	}

	parsed, err := ReadPLY(strings.NewReader(string(original.PLY())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Len() != original.Len() {
		t.Fatalf("Expected %d points, got %d", original.Len(), parsed.Len())
	}
	// Coordinates quantize to three decimals, colors to 1/255 steps.
	const posTol = 6e-4
	const colTol = 1.0/255 + 1e-9
	for i := range original.Points {
		op, pp := original.Points[i], parsed.Points[i]
		if !vecClose(op.Pos, pp.Pos, posTol) {
			t.Fatalf("point %d position %v, want %v", i, pp.Pos, op.Pos)
		}
		oc := op.Col.Clamped()
		if math.Abs(oc.R-pp.Col.R) > colTol ||
			math.Abs(oc.G-pp.Col.G) > colTol ||
			math.Abs(oc.B-pp.Col.B) > colTol {
			t.Fatalf("point %d color %v, want about %v", i, pp.Col, oc)
		}
	}
}

func TestReadPLY_ToleratesCommentsAndBlanks(t *testing.T) {
	src := `ply
comment made with pixelcloud
format ascii 1.0
comment one vertex follows
element vertex 1
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
end_header

-0.010 0.010 0.020 255 128 0
`
	cloud, err := ReadPLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cloud.Len() != 1 {
		t.Fatalf("Expected 1 point, got %d", cloud.Len())
	}
	p := cloud.Points[0]
	if !vecClose(p.Pos, r3.Vec{X: -0.01, Y: 0.01, Z: 0.02}, tolerance) {
		t.Errorf("position %v", p.Pos)
	}
	want := colorful.Color{R: 1, G: 128.0 / 255, B: 0}
	if !colorsClose(p.Col, want, tolerance) {
		t.Errorf("Expected color %v, got %v", want, p.Col)
	}
}

func TestReadPLY_ToleratesEmptyExtraElement(t *testing.T) {
	src := strings.Replace(emptyPLY, "end_header\n", "element face 0\nproperty list uchar int vertex_indices\nend_header\n", 1)
	cloud, err := ReadPLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cloud.Len() != 0 {
		t.Errorf("Expected empty cloud, got %d points", cloud.Len())
	}
}

func TestReadPLY_Errors(t *testing.T) {
	vertex1 := strings.Replace(emptyPLY, "element vertex 0", "element vertex 1", 1)
	tests := []struct {
		name string
		src  string
	}{
		{"empty input", ""},
		{"missing magic", strings.Replace(emptyPLY, "ply\n", "obj\n", 1)},
		{"binary format", strings.Replace(emptyPLY, "format ascii 1.0", "format binary_little_endian 1.0", 1)},
		{"missing format", strings.Replace(emptyPLY, "format ascii 1.0\n", "", 1)},
		{"missing vertex element", strings.Replace(emptyPLY, "element vertex 0\n", "", 1)},
		{"populated extra element", strings.Replace(emptyPLY, "end_header\n", "element face 3\nend_header\n", 1)},
		{"extra vertex property", strings.Replace(emptyPLY, "end_header\n", "property uchar alpha\nend_header\n", 1)},
		{"missing vertex property", strings.Replace(emptyPLY, "property uchar blue\n", "", 1)},
		{"reordered properties", strings.Replace(emptyPLY, "property float x\nproperty float y", "property float y\nproperty float x", 1)},
		{"truncated header", "ply\nformat ascii 1.0\nelement vertex 0\n"},
		{"fewer vertices than announced", vertex1},
		{"short vertex line", vertex1 + "0.0 0.0 0.0 255 255\n"},
		{"unparseable coordinate", vertex1 + "a 0.0 0.0 255 255 255\n"},
		{"color out of range", vertex1 + "0.0 0.0 0.0 300 0 0\n"},
		{"negative color", vertex1 + "0.0 0.0 0.0 -1 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPLY(strings.NewReader(tt.src)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

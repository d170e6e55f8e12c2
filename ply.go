package pixelcloud

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// plyProps is the exact vertex layout written and accepted.
var plyProps = [...]string{"x", "y", "z", "red", "green", "blue"}

// channelByte converts a float color channel to the exported byte value:
// scaled by 255, floored, then clamped.
func channelByte(v float64) uint8 {
	return uint8(max(0, min(255, int(math.Floor(v*255)))))
}

// WritePLY serializes the cloud as ASCII PLY with per-vertex color.
// Coordinates carry 3 decimals. An empty cloud produces a header
// announcing zero vertices, which loaders accept as a valid file.
func (c *Cloud) WritePLY(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ply\nformat ascii 1.0\nelement vertex %d\n", c.Len())
	for _, p := range plyProps[:3] {
		fmt.Fprintf(bw, "property float %s\n", p)
	}
	for _, p := range plyProps[3:] {
		fmt.Fprintf(bw, "property uchar %s\n", p)
	}
	bw.WriteString("end_header\n")
	if c != nil {
		for _, p := range c.Points {
			fmt.Fprintf(bw, "%.3f %.3f %.3f %d %d %d\n",
				p.Pos.X, p.Pos.Y, p.Pos.Z,
				channelByte(p.Col.R), channelByte(p.Col.G), channelByte(p.Col.B))
		}
	}
	return bw.Flush()
}

// PLY returns the export as one byte slice. Buffer writes cannot fail.
func (c *Cloud) PLY() []byte {
	var buf bytes.Buffer
	c.WritePLY(&buf)
	return buf.Bytes()
}

// ReadPLY parses the ASCII vertex-only subset written by WritePLY.
// Comment lines and empty elements are tolerated; binary formats, extra
// elements with entries, and unknown vertex layouts are not.
func ReadPLY(r io.Reader) (*Cloud, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("ply: empty input")
	}
	if strings.TrimSpace(sc.Text()) != "ply" {
		return nil, fmt.Errorf("ply: missing magic")
	}

	vertexCount := -1
	var props []string
	inVertex := false
	sawFormat := false
	headerDone := false
	for !headerDone && sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] == "comment" {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("ply: only the ascii format is supported")
			}
			sawFormat = true
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("ply: malformed element line")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("ply: bad element count %q", fields[2])
			}
			if fields[1] == "vertex" {
				vertexCount = n
				inVertex = true
			} else {
				if n > 0 {
					return nil, fmt.Errorf("ply: unsupported element %q", fields[1])
				}
				inVertex = false
			}
		case "property":
			if inVertex {
				props = append(props, fields[len(fields)-1])
			}
		case "end_header":
			headerDone = true
		default:
			return nil, fmt.Errorf("ply: unexpected header line %q", fields[0])
		}
	}
	if !headerDone {
		return nil, fmt.Errorf("ply: truncated header")
	}
	if !sawFormat {
		return nil, fmt.Errorf("ply: missing format line")
	}
	if vertexCount < 0 {
		return nil, fmt.Errorf("ply: missing vertex element")
	}
	if len(props) != len(plyProps) {
		return nil, fmt.Errorf("ply: expected %d vertex properties, found %d", len(plyProps), len(props))
	}
	for i, p := range plyProps {
		if props[i] != p {
			return nil, fmt.Errorf("ply: unexpected vertex property %q", props[i])
		}
	}

	points := make([]Point, 0, vertexCount)
	for len(points) < vertexCount && sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 6 {
			return nil, fmt.Errorf("ply: vertex line %d has %d fields, want 6", len(points), len(fields))
		}
		var pos [3]float64
		for i := range 3 {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("ply: vertex line %d: %w", len(points), err)
			}
			pos[i] = v
		}
		var col [3]float64
		for i := range 3 {
			v, err := strconv.Atoi(fields[3+i])
			if err != nil || v < 0 || v > 255 {
				return nil, fmt.Errorf("ply: vertex line %d has bad color %q", len(points), fields[3+i])
			}
			col[i] = float64(v) / 255
		}
		points = append(points, Point{
			Pos: r3.Vec{X: pos[0], Y: pos[1], Z: pos[2]},
			Col: colorful.Color{R: col[0], G: col[1], B: col[2]},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(points) != vertexCount {
		return nil, fmt.Errorf("ply: expected %d vertices, found %d", vertexCount, len(points))
	}
	return &Cloud{Points: points}, nil
}

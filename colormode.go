package pixelcloud

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Mode selects the stylistic grading applied to every sampled pixel.
// Most modes recombine the source luminance into a fixed color ramp and
// may push channels past 1; the exporters clamp at the very end.
type Mode int

const (
	ModeOriginal Mode = iota
	ModeCoolBlack
	ModeCyberpunk
	ModeMatrix
	ModeGolden
	ModeOcean
	ModeInferno
	ModeVaporwave
	ModeArctic
	ModeMono
	ModeSepia
	ModeBlueprint
)

var modeNames = [...]string{
	"original",
	"cool_black",
	"cyberpunk",
	"matrix",
	"golden",
	"ocean",
	"inferno",
	"vaporwave",
	"arctic",
	"mono",
	"sepia",
	"blueprint",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode resolves a mode name. Matching is case-insensitive and
// treats "-" and "_" as equivalent.
func ParseMode(s string) (Mode, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color mode %q", s)
}

// Modes lists every grading in declaration order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// TransformColor grades one source pixel. Input bytes are normalized to
// [0,1], passed through the mode formula, then multiplied by tint and
// brightness. The result is not clamped; only Sepia and Vaporwave cap
// their own channels at 1.
func TransformColor(r, g, b uint8, mode Mode, brightness float64, tint colorful.Color) colorful.Color {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255
	// Perceptual luminance, not the plain average the sampler uses for depth.
	l := 0.299*rf + 0.587*gf + 0.114*bf

	var out colorful.Color
	switch mode {
	case ModeOriginal:
		out = colorful.Color{R: rf, G: gf, B: bf}
	case ModeCoolBlack:
		out = colorful.Color{R: 0.35 * l, G: 0.55 * l, B: 1.25 * l}
	case ModeCyberpunk:
		out = colorful.Color{R: 1.5 * l, G: 0.45 * l, B: 1.8 * l}
	case ModeMatrix:
		out = colorful.Color{R: 0, G: 1.5 * l, B: 0}
	case ModeGolden:
		out = colorful.Color{R: 1.6 * l, G: 1.15 * l, B: 0.35 * l}
	case ModeOcean:
		out = colorful.Color{R: 0.25 * l, G: 0.75 * l, B: 1.45 * l}
	case ModeInferno:
		out = colorful.Color{R: 1.8 * l, G: 1.4 * l * l, B: 0.7 * l * l * l}
	case ModeVaporwave:
		out = colorful.Color{R: min(1, 0.55+0.65*l), G: 0.25 + 0.40*l, B: min(1, 0.65+0.45*l)}
	case ModeArctic:
		out = colorful.Color{R: 0.08 + 0.80*l, G: 0.15 + 0.82*l, B: 0.22 + 0.78*l}
	case ModeMono:
		out = colorful.Color{R: l, G: l, B: l}
	case ModeSepia:
		out = colorful.Color{
			R: min(1, 0.393*rf+0.769*gf+0.189*bf),
			G: min(1, 0.349*rf+0.686*gf+0.168*bf),
			B: min(1, 0.272*rf+0.534*gf+0.131*bf),
		}
	case ModeBlueprint:
		out = colorful.Color{R: 0.05 + 0.35*l, G: 0.10 + 0.45*l, B: 0.40 + 0.60*l}
	default:
		// Unknown modes pass the source color through.
		out = colorful.Color{R: rf, G: gf, B: bf}
	}

	out.R *= tint.R * brightness
	out.G *= tint.G * brightness
	out.B *= tint.B * brightness
	return out
}

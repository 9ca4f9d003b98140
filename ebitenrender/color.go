package ebitenrender

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/phanxgames/easel"
)

// ParseColor parses a "#rgb" or "#rrggbb" colour. Unparseable input yields
// white and false.
func ParseColor(s string) (colorful.Color, bool) {
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}, false
	}
	return c, true
}

// stopsColor averages the stops of a linear fill in Lab space, weighted by
// stop opacity.
func stopsColor(stops []easel.GradientStop) (colorful.Color, float64) {
	if len(stops) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}, 0
	}
	c, _ := ParseColor(stops[0].Color)
	alpha := stops[0].Opacity
	for i, s := range stops[1:] {
		next, _ := ParseColor(s.Color)
		c = c.BlendLab(next, 1/float64(i+2))
		alpha += s.Opacity
	}
	return c, alpha / float64(len(stops))
}

// BlendedFill flattens a node's fill layers into one colour. Layers are
// composited bottom to top with their opacity; image fills count as mid
// grey. The node opacity scales the result's alpha.
func BlendedFill(p *easel.Params) color.NRGBA {
	var (
		out   colorful.Color
		alpha float64
	)
	for _, f := range p.FillList() {
		var (
			c colorful.Color
			a = f.Opacity
		)
		switch f.Type {
		case easel.FillLinear:
			var sa float64
			c, sa = stopsColor(f.Stops)
			a *= sa
		case easel.FillImage:
			c = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
		default:
			c, _ = ParseColor(f.Color)
		}
		if a <= 0 {
			continue
		}
		if alpha == 0 {
			out, alpha = c, a
			continue
		}
		out = out.BlendRgb(c, a)
		alpha = a + alpha*(1-a)
	}
	return toNRGBA(out, alpha*p.EffectiveOpacity())
}

// StrokeColor resolves a stroke's colour with the node opacity applied.
func StrokeColor(s easel.Stroke, p *easel.Params) color.NRGBA {
	c, _ := ParseColor(s.Color)
	return toNRGBA(c, s.Opacity*p.EffectiveOpacity())
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	alpha = max(0, min(alpha, 1))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

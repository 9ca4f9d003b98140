package ebitenrender

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/easel"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// geoM converts an affine matrix to Ebitengine's GeoM.
func geoM(m easel.Matrix2D) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m.A)
	g.SetElement(0, 1, m.C)
	g.SetElement(0, 2, m.E)
	g.SetElement(1, 0, m.B)
	g.SetElement(1, 1, m.D)
	g.SetElement(1, 2, m.F)
	return g
}

// outlinePath builds a closed path from outline vertices.
func outlinePath(vs []easel.Vertex) *vector.Path {
	var p vector.Path
	if len(vs) == 0 {
		return &p
	}
	p.MoveTo(float32(vs[0].P0.X), float32(vs[0].P0.Y))
	for i, v := range vs {
		if i > 0 {
			p.LineTo(float32(v.P0.X), float32(v.P0.Y))
		}
		if v.Curve {
			p.CubicTo(
				float32(v.P1.X), float32(v.P1.Y),
				float32(v.P2.X), float32(v.P2.Y),
				float32(v.P3.X), float32(v.P3.Y),
			)
		}
	}
	p.Close()
	return &p
}

func drawTriangles(dst *ebiten.Image, vs []ebiten.Vertex, is []uint16, c color.NRGBA) {
	r, g, b, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r, g, b, a
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	dst.DrawTriangles(vs, is, whiteSubImage, op)
}

func fillPath(dst *ebiten.Image, p *vector.Path, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	drawTriangles(dst, vs, is, c)
}

func strokePath(dst *ebiten.Image, p *vector.Path, s strokePaint) {
	if s.color.A == 0 || s.width <= 0 {
		return
	}
	vs, is := p.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{
		Width:    float32(s.width),
		LineJoin: vector.LineJoinRound,
	})
	drawTriangles(dst, vs, is, s.color)
}

func (d *drawable) draw(dst *ebiten.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible || len(d.outline) == 0 {
		return
	}
	path := outlinePath(d.outline)
	switch d.kind {
	case easel.KindRectangle:
		fillPath(dst, path, d.fill)
	case easel.KindImage:
		if d.image != nil {
			b := d.image.Bounds()
			m := d.toScreen.Multiply(easel.ScaleMatrix(d.w/float64(b.Dx()), d.h/float64(b.Dy()), easel.Point{}))
			op := &ebiten.DrawImageOptions{GeoM: geoM(m), Filter: ebiten.FilterLinear}
			op.ColorScale.ScaleAlpha(float32(d.fill.A) / 255)
			dst.DrawImage(d.image, op)
		} else {
			fillPath(dst, path, color.NRGBA{R: 128, G: 128, B: 128, A: 96})
			p := d.outline[0].P0
			ebitenutil.DebugPrintAt(dst, d.src, int(p.X)+4, int(p.Y)+4)
		}
	case easel.KindText:
		d.drawText(dst)
	}
	for _, s := range d.strokes {
		strokePath(dst, path, s)
	}
}

func (d *drawable) drawText(dst *ebiten.Image) {
	size := d.text.FontSize
	if size <= 0 {
		size = 16
	}
	face := &text.GoTextFace{Source: d.backend.face, Size: size}
	lh := d.text.LineHeight * size
	if lh <= 0 {
		m := face.Metrics()
		lh = m.HAscent + m.HDescent + m.HLineGap
	}
	op := &text.DrawOptions{}
	op.LineSpacing = lh
	switch d.text.Align {
	case easel.AlignCenter:
		op.PrimaryAlign = text.AlignCenter
		op.GeoM.Translate(d.w/2, 0)
	case easel.AlignRight:
		op.PrimaryAlign = text.AlignEnd
		op.GeoM.Translate(d.w, 0)
	}
	op.GeoM.Concat(geoM(d.toScreen))
	op.ColorScale.ScaleWithColor(d.color)
	text.Draw(dst, d.text.Content, face, op)
}

// loadImage reads the image source from disk. A failure leaves a
// placeholder and is reported so the renderer can retry.
func (d *drawable) loadImage(src string) error {
	if src == "" {
		return nil
	}
	img, _, err := ebitenutil.NewImageFromFile(src)
	if err != nil {
		return fmt.Errorf("ebitenrender: load image %q: %w", src, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.image != nil {
		d.image.Deallocate()
	}
	d.image = img
	return nil
}

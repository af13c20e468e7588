package chart

import (
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	cos30 = vg.Length(math.Cos(math.Pi / 6))
	sin30 = vg.Length(math.Sin(math.Pi / 6))
)

// upTriangle is a filled triangle pointing up.
type upTriangle struct{}

func (upTriangle) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	fillTriangle(c, sty, pt, 1)
}

// downTriangle is a filled triangle pointing down.
type downTriangle struct{}

func (downTriangle) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	fillTriangle(c, sty, pt, -1)
}

func fillTriangle(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point, dir vg.Length) {
	c.SetColor(sty.Color)
	r := sty.Radius
	var p vg.Path
	p.Move(vg.Point{X: pt.X, Y: pt.Y + dir*r})
	p.Line(vg.Point{X: pt.X - r*cos30, Y: pt.Y - dir*r*sin30})
	p.Line(vg.Point{X: pt.X + r*cos30, Y: pt.Y - dir*r*sin30})
	p.Close()
	c.Fill(p)
}

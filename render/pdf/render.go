package pdf

import (
	"github.com/jung-kurt/gofpdf"

	"github.com/veeh-harfe/zupfnoter/internal/drawing"
)

// Palette resolves drawing.Color slots to RGB triples. The zero Palette
// renders everything black, matching the teacher's own fixed-black pen.
type Palette struct {
	Default, Variant1, Variant2 [3]int
}

// DefaultPalette is black/red/blue, the same three-color convention the
// original variant coloring names (unstyled, first ending, second ending).
func DefaultPalette() Palette {
	return Palette{
		Default:  [3]int{0, 0, 0},
		Variant1: [3]int{200, 0, 0},
		Variant2: [3]int{0, 0, 200},
	}
}

func (p Palette) resolve(c drawing.Color) [3]int {
	switch c {
	case drawing.ColorVariant1:
		return p.Variant1
	case drawing.ColorVariant2:
		return p.Variant2
	default:
		return p.Default
	}
}

// lineWeightMM maps a drawing.LineWeight class to an actual pen width.
func lineWeightMM(w drawing.LineWeight) float64 {
	switch w {
	case drawing.LineHeavy:
		return 0.6
	case drawing.LineMedium:
		return 0.35
	default:
		return 0.2
	}
}

func setLineStyle(canvas Canvas, style drawing.LineStyle) {
	switch style {
	case drawing.StyleDashed:
		canvas.SetDashPattern([]float64{2, 1.5}, 0)
	case drawing.StyleDotted:
		canvas.SetDashPattern([]float64{0.6, 0.6}, 0)
	default:
		canvas.SetDashPattern(nil, 0)
	}
}

// RenderSheet draws every drawable in sheet onto canvas, in the fixed order
// paths/flowlines first (so note heads sit visually on top), then note
// heads, rest glyphs, and finally annotations.
func RenderSheet(canvas Canvas, sheet *drawing.Sheet, palette Palette) {
	canvas.SetLineCapStyle("round")

	for _, fl := range sheet.FlowLines {
		drawFlowLine(canvas, fl, palette)
	}
	for _, p := range sheet.Paths {
		drawPath(canvas, p, palette)
	}
	for _, e := range sheet.Ellipses {
		drawEllipse(canvas, e, palette)
	}
	for _, g := range sheet.Glyphs {
		drawPath(canvas, g.Path.Translate(g.X, g.Y), palette)
	}
	for _, im := range sheet.Images {
		canvas.ImageOptions(im.Href, im.X, im.Y, im.Width, im.Height, false, gofpdf.ImageOptions{}, 0, "")
	}
	for _, a := range sheet.Annotations {
		drawAnnotation(canvas, a, palette)
	}
}

func drawEllipse(canvas Canvas, e drawing.Ellipse, palette Palette) {
	rgb := palette.resolve(e.Color)
	canvas.SetDrawColor(rgb[0], rgb[1], rgb[2])
	canvas.SetFillColor(rgb[0], rgb[1], rgb[2])
	canvas.SetLineWidth(lineWeightMM(e.LineWeight))
	setLineStyle(canvas, styleOf(e.Dotted))

	styleStr := "D"
	if e.Fill == drawing.FillSolid {
		styleStr = "FD"
	}
	canvas.Ellipse(e.X, e.Y, e.Width/2, e.Height/2, 0, styleStr)
}

func styleOf(dotted bool) drawing.LineStyle {
	if dotted {
		return drawing.StyleDotted
	}
	return drawing.StyleSolid
}

func drawFlowLine(canvas Canvas, fl drawing.FlowLine, palette Palette) {
	rgb := palette.resolve(drawing.ColorDefault)
	canvas.SetDrawColor(rgb[0], rgb[1], rgb[2])
	canvas.SetLineWidth(lineWeightMM(drawing.LineThin))
	setLineStyle(canvas, fl.Style)
	canvas.Line(fl.X1, fl.Y1, fl.X2, fl.Y2)
	canvas.SetDashPattern(nil, 0)
}

// drawPath walks a Path's M/L/C command list, dispatching consecutive
// segments to Line or Curve; filled paths close and fill via Polygon
// instead, since gofpdf has no general filled-subpath primitive.
func drawPath(canvas Canvas, p drawing.Path, palette Palette) {
	rgb := palette.resolve(drawing.ColorDefault)
	canvas.SetDrawColor(rgb[0], rgb[1], rgb[2])
	canvas.SetFillColor(rgb[0], rgb[1], rgb[2])
	canvas.SetLineWidth(lineWeightMM(drawing.LineThin))
	setLineStyle(canvas, p.Style)

	if p.Filled {
		points := make([]gofpdf.PointType, 0, len(p.Ops))
		for _, op := range p.Ops {
			points = append(points, gofpdf.PointType{X: op.X, Y: op.Y})
		}
		if len(points) >= 3 {
			canvas.Polygon(points, "F")
		}
		canvas.SetDashPattern(nil, 0)
		return
	}

	var cur gofpdf.PointType
	for _, op := range p.Ops {
		switch op.Op {
		case "M":
			cur = gofpdf.PointType{X: op.X, Y: op.Y}
		case "L":
			canvas.Line(cur.X, cur.Y, op.X, op.Y)
			cur = gofpdf.PointType{X: op.X, Y: op.Y}
		case "C":
			canvas.Curve(cur.X, cur.Y, op.CtrlX1, op.CtrlY1, op.X, op.Y, "D")
			cur = gofpdf.PointType{X: op.X, Y: op.Y}
		}
	}
	canvas.SetDashPattern(nil, 0)
}

func drawAnnotation(canvas Canvas, a drawing.Annotation, palette Palette) {
	size := 9.0
	if a.Style == "barnumber" || a.Style == "countnote" {
		size = 6.0
	}
	rgb := palette.resolve(drawing.ColorDefault)
	canvas.SetDrawColor(rgb[0], rgb[1], rgb[2])
	canvas.SetFont("Helvetica", "", size)
	canvas.Text(a.X, a.Y, a.Text)
}

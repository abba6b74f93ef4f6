package pdf

import (
	"testing"

	"github.com/veeh-harfe/zupfnoter/internal/drawing"
)

func TestRenderSheetDoesNotPanicOnEveryDrawableKind(t *testing.T) {
	sheet := drawing.NewSheet(400, 300)
	sheet.Ellipses = append(sheet.Ellipses, drawing.Ellipse{X: 10, Y: 10, Width: 5, Height: 5, Fill: drawing.FillSolid})
	sheet.FlowLines = append(sheet.FlowLines, drawing.FlowLine{X1: 0, Y1: 0, X2: 10, Y2: 10, Style: drawing.StyleDashed})
	sheet.Paths = append(sheet.Paths, drawing.Path{Filled: true, Ops: []drawing.PathOp{
		{Op: "M", X: 0, Y: 0}, {Op: "L", X: 1, Y: 0}, {Op: "L", X: 0, Y: 1},
	}})
	sheet.Glyphs = append(sheet.Glyphs, drawing.Glyph{X: 5, Y: 5, Path: drawing.RestGlyph("d8")})
	sheet.Annotations = append(sheet.Annotations, drawing.Annotation{X: 1, Y: 1, Text: "1", Style: "barnumber"})

	canvas := NewNoopCanvas()
	RenderSheet(canvas, sheet, DefaultPalette())
}

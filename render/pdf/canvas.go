// Package pdf turns a drawing.Sheet into a gofpdf document. It mirrors the
// teacher's own render boundary in pdf.go: a small Canvas interface the
// renderer draws through, a real gofpdf-backed implementation, and a no-op
// double for tests and the column-overflow probing the teacher's cmd_gen.go
// does before committing ink to the real page.
package pdf

import "github.com/jung-kurt/gofpdf"

// Canvas is the drawing surface a Sheet paints onto. It widens the
// teacher's Pdf interface (pdf.go) with Ellipse (the teacher only ever
// drew circles) and a dash-pattern setter (the teacher had no dashed/dotted
// lines to draw).
type Canvas interface {
	AddPage()
	SetLineWidth(width float64)
	SetLineCapStyle(styleStr string)
	SetDashPattern(dashArray []float64, dashPhase float64)
	SetDrawColor(r, g, b int)
	SetFillColor(r, g, b int)
	Polygon(points []gofpdf.PointType, styleStr string)
	Line(x1, y1, x2, y2 float64)
	Ellipse(x, y, rx, ry, degRotate float64, styleStr string)
	Curve(x0, y0, cx0, cy0, x1, y1 float64, styleStr string)
	SetFont(familyStr, styleStr string, size float64)
	Text(x, y float64, txtStr string)
	ImageOptions(imageNameStr string, x, y, w, h float64, flow bool, options gofpdf.ImageOptions, link int, linkStr string)
	OutputFileAndClose(filename string) error
}

// *gofpdf.Fpdf satisfies Canvas directly; every method above is lifted
// verbatim from its signature.
var _ Canvas = &gofpdf.Fpdf{}

// NewCanvas opens a single-page A4 document in millimeters, matching the
// unit the layout engine's Options are expressed in.
func NewCanvas() Canvas {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.AddPage()
	return doc
}

// noopCanvas fulfills Canvas without drawing anything, grounded on the
// teacher's dummyPdf: cmd_gen.go renders once against a dummy canvas to
// measure whether content overflows a column before spending ink on the
// real one.
type noopCanvas struct{}

// NewNoopCanvas returns a Canvas that discards every call.
func NewNoopCanvas() Canvas { return noopCanvas{} }

var _ Canvas = noopCanvas{}

func (noopCanvas) AddPage()                                    {}
func (noopCanvas) SetLineWidth(width float64)                  {}
func (noopCanvas) SetLineCapStyle(styleStr string)              {}
func (noopCanvas) SetDashPattern(dashArray []float64, phase float64) {}
func (noopCanvas) SetDrawColor(r, g, b int)                     {}
func (noopCanvas) SetFillColor(r, g, b int)                     {}
func (noopCanvas) Polygon(points []gofpdf.PointType, styleStr string) {}
func (noopCanvas) Line(x1, y1, x2, y2 float64)                  {}
func (noopCanvas) Ellipse(x, y, rx, ry, degRotate float64, styleStr string) {}
func (noopCanvas) Curve(x0, y0, cx0, cy0, x1, y1 float64, styleStr string) {}
func (noopCanvas) SetFont(familyStr, styleStr string, size float64) {}
func (noopCanvas) Text(x, y float64, txtStr string)             {}
func (noopCanvas) ImageOptions(imageNameStr string, x, y, w, h float64, flow bool, options gofpdf.ImageOptions, link int, linkStr string) {
}
func (noopCanvas) OutputFileAndClose(filename string) error { return nil }

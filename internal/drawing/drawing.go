// Package drawing is the Drawing Model (C5): a small set of drawable
// variants, a glyph catalog for rests and ornaments, the Sheet container
// the layout engine fills in, and a collision detector over annotation
// bounding boxes. Nothing in this package knows about ABC, music time, or
// gofpdf -- it is pure geometry and string data, consumed by render/pdf or
// any other renderer.
package drawing

import "fmt"

// Fill selects whether an Ellipse is drawn solid or outline-only.
type Fill int

const (
	FillEmpty Fill = iota
	FillSolid
)

// LineWeight is the stroke width class a renderer maps to an actual pen
// width.
type LineWeight int

const (
	LineThin LineWeight = iota
	LineMedium
	LineHeavy
)

// Color is a logical color slot; the renderer resolves it against the
// active instrument/theme palette rather than this package carrying RGB
// values itself.
type Color int

const (
	ColorDefault Color = iota
	ColorVariant1
	ColorVariant2
)

// Ellipse draws a note head.
type Ellipse struct {
	X, Y          float64
	Width, Height float64
	Fill          Fill
	Dotted        bool
	LineWeight    LineWeight
	Color         Color
	ConfKey       string
}

// BoundingBox returns the rectangle Ellipse occupies, centered on (X, Y).
func (e Ellipse) BoundingBox() Rect {
	return Rect{X: e.X - e.Width/2, Y: e.Y - e.Height/2, W: e.Width, H: e.Height}
}

// FlowLine is a straight segment connecting two points: a voice's flowline,
// a chord synchline, or a cross-voice synchline, distinguished by Style.
type FlowLine struct {
	X1, Y1, X2, Y2 float64
	Style          LineStyle
	ConfKey        string
}

// LineStyle is how a FlowLine or Path is stroked.
type LineStyle int

const (
	StyleSolid LineStyle = iota
	StyleDashed
	StyleDotted
)

// PathOp is one command in a Path's command list: "M" (move), "L" (line),
// or "C" (cubic, with two control points folded into CtrlX1/Y1/X2/Y2).
type PathOp struct {
	Op                     string
	X, Y                   float64
	CtrlX1, CtrlY1         float64
	CtrlX2, CtrlY2         float64
}

// Path is an arbitrary stroked/filled shape: a jumpline's L-shaped route
// plus its arrowhead, a note flag, or a glyph-catalog entry instantiated at
// a position.
type Path struct {
	Ops     []PathOp
	Filled  bool
	Style   LineStyle
	ConfKey string
}

// Translate returns a copy of p with every point shifted by (dx, dy), used
// to instantiate a glyph-catalog template at a drawn position.
func (p Path) Translate(dx, dy float64) Path {
	out := Path{Filled: p.Filled, Style: p.Style, ConfKey: p.ConfKey, Ops: make([]PathOp, len(p.Ops))}
	for i, op := range p.Ops {
		out.Ops[i] = PathOp{
			Op: op.Op,
			X:  op.X + dx, Y: op.Y + dy,
			CtrlX1: op.CtrlX1 + dx, CtrlY1: op.CtrlY1 + dy,
			CtrlX2: op.CtrlX2 + dx, CtrlY2: op.CtrlY2 + dy,
		}
	}
	return out
}

// Annotation is a positioned text label: a notebound annotation, bar
// number, count note, string name header, or free-standing extract note.
type Annotation struct {
	X, Y     float64
	Text     string
	Style    string
	ConfKey  string
}

// BoundingBox estimates Annotation's footprint for collision detection,
// given an average glyph width/height in the same units as X/Y.
func (a Annotation) BoundingBox(glyphWidth, glyphHeight float64) Rect {
	w := glyphWidth * float64(len([]rune(a.Text)))
	return Rect{X: a.X, Y: a.Y - glyphHeight, W: w, H: glyphHeight}
}

// Glyph is a catalog entry instantiated at a position: a rest duration
// glyph, a fermata, or an emphasis mark.
type Glyph struct {
	X, Y    float64
	Path    Path
	ConfKey string
}

// Image is an embedded raster reference (e.g. a cover image or fingering
// diagram) passed through from the ABC source untouched.
type Image struct {
	X, Y, Width, Height float64
	Href                string
}

// Rect is an axis-aligned bounding box in sheet coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether r and other share any area.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.W && other.X < r.X+r.W &&
		r.Y < other.Y+other.H && other.Y < r.Y+r.H
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect{%.2f,%.2f,%.2f,%.2f}", r.X, r.Y, r.W, r.H)
}

// Sheet is one page's worth of drawables, produced by the layout engine and
// consumed by a renderer. Drawables are kept in separate slices rather than
// one polymorphic list because each renderer backend draws them with a
// different primitive and ordering matters within, not across, a kind.
type Sheet struct {
	Width, Height float64

	Ellipses    []Ellipse
	FlowLines   []FlowLine
	Paths       []Path
	Annotations []Annotation
	Glyphs      []Glyph
	Images      []Image
}

// NewSheet returns an empty Sheet of the given page dimensions.
func NewSheet(width, height float64) *Sheet {
	return &Sheet{Width: width, Height: height}
}

// FindOverlaps returns every pair of annotation indices whose bounding
// boxes intersect, given a fixed average glyph size. It only reports the
// pairs; it does not move or remove any annotation.
func FindOverlaps(annotations []Annotation, glyphWidth, glyphHeight float64) [][2]int {
	var pairs [][2]int
	boxes := make([]Rect, len(annotations))
	for i, a := range annotations {
		boxes[i] = a.BoundingBox(glyphWidth, glyphHeight)
	}
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Overlaps(boxes[j]) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

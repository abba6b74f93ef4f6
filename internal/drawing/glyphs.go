package drawing

import "math"

// RestGlyphKey is the duration-bucket key ("d1".."d64", or "err") used to
// look up a rest's glyph, mirroring the bucket keys the music package
// normalizes durations to.
type RestGlyphKey string

// restGlyphs is the catalog of rest glyphs, one small stroke-path template
// per duration bucket, centered on the origin. A renderer instantiates one
// via Path.Translate at the rest's drawn position.
var restGlyphs = map[RestGlyphKey]Path{
	"d64": wholeRest(),
	"d48": halfRest(),
	"d32": halfRest(),
	"d24": quarterRest(),
	"d16": quarterRest(),
	"d12": eighthRest(),
	"d8":  eighthRest(),
	"d6":  sixteenthRest(),
	"d4":  sixteenthRest(),
	"d3":  sixteenthRest(),
	"d2":  sixteenthRest(),
	"d1":  sixteenthRest(),
}

func wholeRest() Path {
	return Path{Filled: true, Ops: []PathOp{
		{Op: "M", X: -1.5, Y: -0.5},
		{Op: "L", X: 1.5, Y: -0.5},
		{Op: "L", X: 1.5, Y: 0.5},
		{Op: "L", X: -1.5, Y: 0.5},
	}}
}

func halfRest() Path {
	return Path{Filled: true, Ops: []PathOp{
		{Op: "M", X: -1.5, Y: -0.5},
		{Op: "L", X: 1.5, Y: -0.5},
		{Op: "L", X: 1.5, Y: 0},
		{Op: "L", X: -1.5, Y: 0},
	}}
}

// quarterRest is the zigzag-with-hook shape, approximated with short line
// segments since the catalog only needs a stable, recognizable outline.
func quarterRest() Path {
	return Path{Ops: []PathOp{
		{Op: "M", X: 0, Y: -2},
		{Op: "L", X: -0.8, Y: -1},
		{Op: "L", X: 0.4, Y: 0},
		{Op: "L", X: -0.6, Y: 1},
		{Op: "L", X: 0.6, Y: 2},
	}}
}

func eighthRest() Path {
	return Path{Filled: true, Ops: []PathOp{
		{Op: "M", X: 0.6, Y: -1.6},
		{Op: "L", X: -0.6, Y: 0},
		{Op: "C", X: 0.6, Y: 0.8, CtrlX1: -0.2, CtrlY1: 0.2, CtrlX2: 1, CtrlY2: 0.4},
	}}
}

func sixteenthRest() Path {
	e := eighthRest()
	e.Ops = append(e.Ops, PathOp{Op: "M", X: 0.2, Y: -0.8}, PathOp{Op: "L", X: -1, Y: 0.6})
	return e
}

// RestGlyph returns the template path for a duration bucket key, falling
// back to the quarter-rest shape for an unrecognized or "err" key.
func RestGlyph(key RestGlyphKey) Path {
	if p, ok := restGlyphs[key]; ok {
		return p
	}
	return quarterRest()
}

// Fermata is a small arc-over-dot glyph, centered on the origin above the
// note it decorates.
func Fermata() Path {
	return Path{Ops: []PathOp{
		{Op: "M", X: -1.2, Y: 0},
		{Op: "C", X: 1.2, Y: 0, CtrlX1: -1.2, CtrlY1: -2, CtrlX2: 1.2, CtrlY2: -2},
		{Op: "M", X: 0, Y: -0.6},
		{Op: "L", X: 0, Y: -0.6},
	}}
}

// Emphasis is a small accent wedge, used for decoration text like ">"/"^".
func Emphasis() Path {
	return Path{Filled: true, Ops: []PathOp{
		{Op: "M", X: -0.8, Y: 0.6},
		{Op: "L", X: 0, Y: -0.6},
		{Op: "L", X: 0.8, Y: 0.6},
	}}
}

// NoteFlag returns a stem-plus-flag path for a tuplet/beamed note with the
// given flag count (1 for an eighth note's single flag, 2 for sixteenth,
// and so on), rooted at the note head.
func NoteFlag(count int) Path {
	ops := []PathOp{{Op: "M", X: 0, Y: 0}, {Op: "L", X: 0, Y: -3}}
	for i := 0; i < count; i++ {
		y := -3 + float64(i)*0.7
		ops = append(ops,
			PathOp{Op: "M", X: 0, Y: y},
			PathOp{Op: "C", X: 0.9, Y: y + 0.9, CtrlX1: 0.6, CtrlY1: y, CtrlX2: 0.9, CtrlY2: y + 0.4},
		)
	}
	return Path{Ops: ops}
}

// Arrowhead returns a small filled triangle whose apex sits at the origin,
// pointing in the direction of (dx, dy) -- the jumpline arrowhead.
func Arrowhead(dx, dy float64) Path {
	// a fixed-size triangle rotated to point along (dx, dy); callers
	// translate it to the destination anchor.
	length := 2.0
	width := 1.2
	nx, ny := -dy, dx
	norm := math.Hypot(nx, ny)
	if norm == 0 {
		nx, ny, norm = 0, 1, 1
	}
	nx, ny = nx/norm, ny/norm
	dlen := math.Hypot(dx, dy)
	if dlen == 0 {
		dx, dy, dlen = 0, -1, 1
	}
	ux, uy := dx/dlen, dy/dlen
	baseX, baseY := -ux*length, -uy*length
	return Path{Filled: true, Ops: []PathOp{
		{Op: "M", X: 0, Y: 0},
		{Op: "L", X: baseX + nx*width/2, Y: baseY + ny*width/2},
		{Op: "L", X: baseX - nx*width/2, Y: baseY - ny*width/2},
	}}
}

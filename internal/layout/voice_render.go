package layout

import (
	"github.com/veeh-harfe/zupfnoter/internal/drawing"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// position is the resolved sheet coordinate of one rendered note head,
// kept around so flowlines and synchlines can look an already-placed
// playable back up by identity.
type position struct {
	x, y float64
}

// renderVoice draws one voice's notes, rests, measure bars, flowlines,
// chord synchlines, and jumplines into sheet, and returns the sheet
// position it resolved for every visible playable so cross-voice
// synchlines and annotation passes can look them back up.
func renderVoice(sheet *drawing.Sheet, v *music.Voice, extract Extract, compression map[int]float64, beatSpacing float64, opts Options) (map[music.Playable]position, []error) {
	var errs []error
	positions := map[music.Playable]position{}

	var lastVisible music.Playable
	for _, p := range v.Playables {
		if !p.IsVisible() {
			continue
		}
		pitch, hasPitch := p.Pitch()
		if !hasPitch {
			errs = append(errs, harperrWarn("playable has no single pitch at render time", 0))
			continue
		}
		x := applyEdgeShift(PitchX(pitch, opts), shiftOf(p), opts)
		y := yFor(compressedBeat(p.Beat(), compression), beatSpacing, opts)
		positions[p] = position{x: x, y: y}

		if sp, ok := p.(*music.SynchPoint); ok {
			for _, n := range sp.Notes {
				nx := applyEdgeShift(PitchX(n.Pitch_, opts), n.ShiftDir, opts)
				positions[n] = position{x: nx, y: y}
			}
		}

		drawPlayable(sheet, p, x, y, opts)

		if lastVisible != nil && !p.HasFirstInPart() {
			style := drawing.StyleSolid
			if extract.SubFlowLines[v.Index] {
				style = drawing.StyleDashed
			} else if sharesATieWith(lastVisible, p) {
				style = drawing.StyleDotted
			}
			lp := positions[lastVisible]
			sheet.FlowLines = append(sheet.FlowLines, drawing.FlowLine{
				X1: lp.x, Y1: lp.y, X2: x, Y2: y, Style: style,
			})
		}
		lastVisible = p

		if sp, ok := p.(*music.SynchPoint); ok && len(sp.Notes) >= 2 {
			minN, maxN := sp.MinMaxPitch()
			x1 := applyEdgeShift(PitchX(minN.Pitch_, opts), minN.ShiftDir, opts)
			x2 := applyEdgeShift(PitchX(maxN.Pitch_, opts), maxN.ShiftDir, opts)
			sheet.FlowLines = append(sheet.FlowLines, drawing.FlowLine{
				X1: x1, Y1: y, X2: x2, Y2: y, Style: drawing.StyleDashed,
			})
		}
	}

	for _, g := range v.Gotos {
		renderGoto(sheet, g, positions, opts)
	}

	return positions, errs
}

func shiftOf(p music.Playable) music.Shift {
	switch t := p.(type) {
	case *music.Note:
		return t.ShiftDir
	case *music.Pause:
		return music.ShiftNone
	case *music.SynchPoint:
		return t.Notes[len(t.Notes)-1].ShiftDir
	default:
		return music.ShiftNone
	}
}

func sharesATieWith(a, b music.Playable) bool {
	an, aok := a.(*music.Note)
	bn, bok := b.(*music.Note)
	return aok && bok && an.TieStart && bn.TieEnd
}

// applyEdgeShift implements the A3-edge shift and the explicit +/- width
// nudge from an annotation-set ShiftDir.
func applyEdgeShift(x float64, dir music.Shift, opts Options) float64 {
	if opts.LimitA3 {
		if x < 5 {
			x += opts.EllipseSize
		} else if x > 415 {
			x -= opts.EllipseSize
		}
	}
	switch dir {
	case music.ShiftLeft:
		x -= opts.EllipseSize
	case music.ShiftRight:
		x += opts.EllipseSize
	}
	return x
}

func drawPlayable(sheet *drawing.Sheet, p music.Playable, x, y float64, opts Options) {
	switch t := p.(type) {
	case *music.Note:
		drawNote(sheet, t, x, y, opts)
	case *music.SynchPoint:
		for _, n := range t.Notes {
			nx := applyEdgeShift(PitchX(n.Pitch_, opts), n.ShiftDir, opts)
			drawNote(sheet, n, nx, y, opts)
		}
	case *music.Pause:
		drawRest(sheet, t, x, y, opts)
	}
}

func drawNote(sheet *drawing.Sheet, n *music.Note, x, y float64, opts Options) {
	style := styleFor(n.Duration)
	size := opts.EllipseSize * style.sizeWeight

	fill := drawing.FillSolid
	weight := drawing.LineThin
	if n.Duration >= 16 {
		fill = drawing.FillEmpty
		weight = drawing.LineMedium
	}
	color := drawing.ColorDefault
	switch {
	case n.Variant == 1:
		color = drawing.ColorVariant1
	case n.Variant == 2:
		color = drawing.ColorVariant2
	}

	sheet.Ellipses = append(sheet.Ellipses, drawing.Ellipse{
		X: x, Y: y, Width: size, Height: size,
		Fill: fill, Dotted: style.dotted, LineWeight: weight, Color: color,
	})

	if n.HasMeasureStart() {
		sheet.Paths = append(sheet.Paths, measureBar(x, y, opts))
	}

	if opts.Beaming && style.flagCount > 0 {
		sheet.Paths = append(sheet.Paths, drawing.NoteFlag(style.flagCount).Translate(x, y))
	}
}

func drawRest(sheet *drawing.Sheet, p *music.Pause, x, y float64, opts Options) {
	key := restGlyphKey(p.Duration)
	sheet.Glyphs = append(sheet.Glyphs, drawing.Glyph{X: x, Y: y, Path: drawing.RestGlyph(key)})
}

// measureBar is the thin filled rectangle marking a measure, drawn above
// the note (or below when bottomup).
func measureBar(x, y float64, opts Options) drawing.Path {
	dy := -1.0
	if opts.BottomUp {
		dy = 1.0
	}
	return drawing.Path{Filled: true, Ops: []drawing.PathOp{
		{Op: "M", X: x - opts.EllipseSize, Y: y + dy},
		{Op: "L", X: x + opts.EllipseSize, Y: y + dy},
		{Op: "L", X: x + opts.EllipseSize, Y: y + dy*1.3},
		{Op: "L", X: x - opts.EllipseSize, Y: y + dy*1.3},
	}}
}

// renderGoto draws one jumpline: an L-shaped path on a vertical corridor
// plus a filled arrowhead at the destination.
func renderGoto(sheet *drawing.Sheet, g *music.Goto, positions map[music.Playable]position, opts Options) {
	from, ok1 := positions[g.From]
	to, ok2 := positions[g.To]
	if !ok1 || !ok2 {
		return
	}

	fromAnchor, toAnchor := float64(g.FromAnchor), float64(g.ToAnchor)
	if opts.BottomUp {
		fromAnchor, toAnchor = -fromAnchor, -toAnchor
	}

	corridorX := from.x + (float64(g.Distance)+0.5)*opts.XSpacing
	p1y := from.y + fromAnchor*opts.EllipseSize
	p4y := to.y + toAnchor*opts.EllipseSize

	style := drawing.StyleSolid
	path := drawing.Path{Style: style, ConfKey: g.ConfKey, Ops: []drawing.PathOp{
		{Op: "M", X: from.x, Y: p1y},
		{Op: "L", X: corridorX, Y: p1y},
		{Op: "L", X: corridorX, Y: p4y},
		{Op: "L", X: to.x, Y: p4y},
	}}
	sheet.Paths = append(sheet.Paths, path)

	arrow := drawing.Arrowhead(to.x-corridorX, 0)
	sheet.Paths = append(sheet.Paths, arrow.Translate(to.x, p4y))
}

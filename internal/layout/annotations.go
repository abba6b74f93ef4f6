package layout

import (
	"fmt"

	"github.com/veeh-harfe/zupfnoter/internal/drawing"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// renderAnnotationPasses runs the five independent annotation passes: notebound
// annotations, barnumbers, countnotes, string names, and free-standing extract
// notes. Each pass only ever appends to sheet.Annotations; none of them touch
// note/rest placement, which renderVoice has already finished.
func renderAnnotationPasses(sheet *drawing.Sheet, voices []*music.Voice, extract Extract, positionsByVoice map[int]map[music.Playable]position, opts Options) {
	for _, v := range voices {
		positions := positionsByVoice[v.Index]
		renderNoteboundAnnotations(sheet, v, positions)
		if extract.BarNumbers[v.Index] {
			renderBarNumbers(sheet, v, positions, opts)
		}
		renderCountNotes(sheet, v, positions)
	}

	renderStringNames(sheet, extract, opts)
	renderExtractNotes(sheet, extract)
}

// renderNoteboundAnnotations places every NoteBoundAnnotation at its
// companion's resolved center plus the annotation's own offset.
func renderNoteboundAnnotations(sheet *drawing.Sheet, v *music.Voice, positions map[music.Playable]position) {
	for _, ann := range v.Annotations {
		center, ok := positions[ann.Companion]
		if !ok {
			continue
		}
		sheet.Annotations = append(sheet.Annotations, drawing.Annotation{
			X:       center.x + ann.OffsetX,
			Y:       center.y + ann.OffsetY,
			Text:    ann.Text,
			Style:   ann.Style,
			ConfKey: ann.ConfKey,
		})
	}
}

// renderBarNumbers walks v.Playables in source order, counting measure
// starts as it goes, and emits "<prefix><count>" at each one.
func renderBarNumbers(sheet *drawing.Sheet, v *music.Voice, positions map[music.Playable]position, opts Options) {
	count := 0
	for _, p := range v.Playables {
		ms, ok := v.MeasureAt[p]
		if !ok {
			continue
		}
		count++
		center, ok := positions[p]
		if !ok {
			continue
		}
		sheet.Annotations = append(sheet.Annotations, drawing.Annotation{
			X:       center.x,
			Y:       center.y,
			Text:    fmt.Sprintf("%s%d", opts.BarNumberPrefix, count),
			Style:   "barnumber",
			ConfKey: "barnumber." + ms.Companion.Znid(),
		})
	}
}

// renderCountNotes emits an annotation for every Note or Pause carrying a
// non-empty CountNote, at its resolved center.
func renderCountNotes(sheet *drawing.Sheet, v *music.Voice, positions map[music.Playable]position) {
	for _, p := range v.Playables {
		text := countNoteOf(p)
		if text == "" {
			continue
		}
		center, ok := positions[p]
		if !ok {
			continue
		}
		sheet.Annotations = append(sheet.Annotations, drawing.Annotation{
			X: center.x, Y: center.y, Text: text, Style: "countnote",
		})
	}
}

func countNoteOf(p music.Playable) string {
	switch t := p.(type) {
	case *music.Note:
		return t.CountNote
	case *music.Pause:
		return t.CountNote
	default:
		return ""
	}
}

// renderStringNames centers a headline annotation over each string, one
// string per semitone column starting at pitch 0 -- extract.stringnames
// carries no pitch mapping of its own, so the string index doubles as the
// pitch offset PitchX expects.
func renderStringNames(sheet *drawing.Sheet, extract Extract, opts Options) {
	for i, name := range extract.StringNames {
		if name == "" {
			continue
		}
		sheet.Annotations = append(sheet.Annotations, drawing.Annotation{
			X:     PitchX(i, opts),
			Y:     0,
			Text:  name,
			Style: "stringname",
		})
	}
}

// renderExtractNotes places extract.notes verbatim at their absolute sheet
// positions.
func renderExtractNotes(sheet *drawing.Sheet, extract Extract) {
	for _, n := range extract.ExtraNotes {
		sheet.Annotations = append(sheet.Annotations, drawing.Annotation{
			X: n.X, Y: n.Y, Text: n.Text, Style: "extractnote",
		})
	}
}

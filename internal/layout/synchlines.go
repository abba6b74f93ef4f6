package layout

import (
	"github.com/veeh-harfe/zupfnoter/internal/drawing"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// renderSynchLines draws the cross-voice dashed flowlines named by
// extract.SynchLines: for each beat shared by both voices, the note pair
// minimizing pitch distance between the two beat's chords.
func renderSynchLines(sheet *drawing.Sheet, song *music.Song, extract Extract, positionsByVoice map[int]map[music.Playable]position) {
	for _, pair := range extract.SynchLines {
		v1, ok1 := song.Voices[pair[0]]
		v2, ok2 := song.Voices[pair[1]]
		if !ok1 || !ok2 {
			continue
		}
		pos1, pos2 := positionsByVoice[v1.Index], positionsByVoice[v2.Index]
		beatMap1, beatMap2 := v1.BeatMap(), v2.BeatMap()

		for beat, p1 := range beatMap1 {
			p2, ok := beatMap2[beat]
			if !ok {
				continue
			}
			n1, n2 := closestPitchPair(p1, p2)
			if n1 == nil || n2 == nil {
				continue
			}
			a, okA := pos1[n1Playable(p1, n1)]
			b, okB := pos2[n1Playable(p2, n2)]
			if !okA || !okB {
				continue
			}
			sheet.FlowLines = append(sheet.FlowLines, drawing.FlowLine{
				X1: a.x, Y1: a.y, X2: b.x, Y2: b.y, Style: drawing.StyleDashed,
			})
		}
	}
}

// closestPitchPair picks the note from each side's chord (a single note,
// or every constituent of a SynchPoint) minimizing the pitch distance
// between the two sides.
func closestPitchPair(p1, p2 music.Playable) (*music.Note, *music.Note) {
	notes1 := notesOf(p1)
	notes2 := notesOf(p2)
	if len(notes1) == 0 || len(notes2) == 0 {
		return nil, nil
	}
	var best1, best2 *music.Note
	bestDist := -1
	for _, a := range notes1 {
		for _, b := range notes2 {
			d := a.Pitch_ - b.Pitch_
			if d < 0 {
				d = -d
			}
			if bestDist == -1 || d < bestDist {
				bestDist, best1, best2 = d, a, b
			}
		}
	}
	return best1, best2
}

func notesOf(p music.Playable) []*music.Note {
	switch t := p.(type) {
	case *music.Note:
		return []*music.Note{t}
	case *music.SynchPoint:
		return t.Notes
	default:
		return nil
	}
}

// n1Playable returns the Playable identity renderVoice used as a positions
// map key for note n within chord/playable p: p itself for a bare Note, or
// the *music.Note constituent for a SynchPoint (drawNote positions each
// constituent of a chord independently).
func n1Playable(p music.Playable, n *music.Note) music.Playable {
	if _, ok := p.(*music.SynchPoint); ok {
		return n
	}
	return p
}

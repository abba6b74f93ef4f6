package layout

import (
	"testing"

	"github.com/veeh-harfe/zupfnoter/internal/abcsym"
	"github.com/veeh-harfe/zupfnoter/internal/drawing"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

func mustTransform(t *testing.T, abcText string) *music.Song {
	t.Helper()
	a := abcsym.NewAdapter(nil)
	voices, errs := a.Parse("test", abcText)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	song, terrs := music.NewTransformer(music.DefaultOptions()).Transform(voices)
	if len(terrs) != 0 {
		t.Fatalf("unexpected transform errors: %v", terrs)
	}
	return song
}

// TestPitchMonotonicity is testable property 8: within a chord, the higher
// MIDI pitch always lands further right.
func TestPitchMonotonicity(t *testing.T) {
	song := mustTransform(t, "X:1\nM:4/4\nK:C\n[CEG]2|\n")
	opts := DefaultOptions()
	sheet, errs := Build(song, Extract{}, opts)
	if len(errs) != 0 {
		t.Fatalf("unexpected layout errors: %v", errs)
	}
	if len(sheet.Ellipses) != 3 {
		t.Fatalf("expected 3 note heads for the chord, got %d", len(sheet.Ellipses))
	}
	// C=60, E=64, G=67 were declared in ascending pitch order, and the
	// chord's constituent notes are drawn in the same order.
	for i := 1; i < len(sheet.Ellipses); i++ {
		if sheet.Ellipses[i].X <= sheet.Ellipses[i-1].X {
			t.Fatalf("expected strictly increasing X by pitch, got %v", sheet.Ellipses)
		}
	}
}

// TestBeatMonotonicity is testable property 9: with bottomup=false, later
// beats land at a strictly greater Y.
func TestBeatMonotonicity(t *testing.T) {
	song := mustTransform(t, "X:1\nM:4/4\nK:C\nCDEF|\n")
	opts := DefaultOptions()
	sheet, errs := Build(song, Extract{}, opts)
	if len(errs) != 0 {
		t.Fatalf("unexpected layout errors: %v", errs)
	}
	if len(sheet.Ellipses) != 4 {
		t.Fatalf("expected 4 note heads, got %d", len(sheet.Ellipses))
	}
	for i := 1; i < len(sheet.Ellipses); i++ {
		if sheet.Ellipses[i].Y <= sheet.Ellipses[i-1].Y {
			t.Fatalf("expected strictly increasing Y by beat, got %v", sheet.Ellipses)
		}
	}
}

// TestPageFit is testable property 10: the last playable's Y never exceeds
// the configured drawing height.
func TestPageFit(t *testing.T) {
	song := mustTransform(t, "X:1\nM:4/4\nK:C\nCDEF|GABc|CDEF|GABc|\n")
	opts := DefaultOptions()
	sheet, errs := Build(song, Extract{}, opts)
	if len(errs) != 0 {
		t.Fatalf("unexpected layout errors: %v", errs)
	}
	if len(sheet.Ellipses) == 0 {
		t.Fatalf("expected some note heads")
	}
	last := sheet.Ellipses[len(sheet.Ellipses)-1]
	if last.Y > opts.DrawingHeight {
		t.Fatalf("expected last note's Y (%v) <= DrawingHeight (%v)", last.Y, opts.DrawingHeight)
	}
}

// TestJumplineArrowhead is testable property 11: every Goto produces
// exactly one line path and one filled triangle arrowhead.
func TestJumplineArrowhead(t *testing.T) {
	song := mustTransform(t, "X:1\nM:4/4\nK:C\n|:CDEF:|\n")
	v := song.Voices[1]
	if len(v.Gotos) != 1 {
		t.Fatalf("expected exactly one Goto, got %d", len(v.Gotos))
	}
	opts := DefaultOptions()
	sheet, errs := Build(song, Extract{}, opts)
	if len(errs) != 0 {
		t.Fatalf("unexpected layout errors: %v", errs)
	}
	// The first note also carries a measure bar, a filled four-point
	// rectangle; an arrowhead is a filled three-point triangle.
	var lines, arrowheads int
	for _, p := range sheet.Paths {
		if p.Filled {
			if len(p.Ops) == 3 {
				arrowheads++
			}
		} else {
			lines++
		}
	}
	if lines != 1 {
		t.Fatalf("expected exactly 1 jumpline path, got %d among %v", lines, sheet.Paths)
	}
	if arrowheads != 1 {
		t.Fatalf("expected exactly 1 filled arrowhead, got %d among %v", arrowheads, sheet.Paths)
	}
}

// TestTwoVoiceSynchronization is scenario S6: cross-voice synchlines pair
// notes at equal beats across two voices.
func TestTwoVoiceSynchronization(t *testing.T) {
	song := mustTransform(t, "X:1\nM:4/4\nK:C\nV:1\nCDEF|\nV:2\nGABc|\n")
	opts := DefaultOptions()
	extract := Extract{SynchLines: [][2]int{{1, 2}}}
	sheet, errs := Build(song, extract, opts)
	if len(errs) != 0 {
		t.Fatalf("unexpected layout errors: %v", errs)
	}
	var dashed int
	for _, fl := range sheet.FlowLines {
		if fl.Style == drawing.StyleDashed {
			dashed++
		}
	}
	if dashed != 4 {
		t.Fatalf("expected 4 dashed cross-voice synchlines, got %d among %v", dashed, sheet.FlowLines)
	}
}

package music

import (
	"errors"
	"testing"

	"github.com/veeh-harfe/zupfnoter/internal/abcsym"
	"github.com/veeh-harfe/zupfnoter/internal/harperr"
)

func mustParse(t *testing.T, abc string) map[int][]*abcsym.Symbol {
	t.Helper()
	a := abcsym.NewAdapter(nil)
	voices, errs := a.Parse("test", abc)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return voices
}

func TestTransformSingleBar(t *testing.T) {
	voices := mustParse(t, "X:1\nM:4/4\nK:C\nCDEF|\n")
	song, errs := NewTransformer(DefaultOptions()).Transform(voices)
	if len(errs) != 0 {
		t.Fatalf("unexpected transform errors: %v", errs)
	}
	v := song.Voices[1]
	if len(v.Playables) != 4 {
		t.Fatalf("expected 4 playables, got %d", len(v.Playables))
	}
	wantPitch := []int{60, 62, 64, 65}
	wantBeat := []int{0, 1, 2, 3}
	for i, p := range v.Playables {
		pitch, ok := p.Pitch()
		if !ok || pitch != wantPitch[i] {
			t.Fatalf("playable %d: got pitch %d ok=%v, want %d", i, pitch, ok, wantPitch[i])
		}
		if p.Beat() != wantBeat[i] {
			t.Fatalf("playable %d: got beat %d, want %d", i, p.Beat(), wantBeat[i])
		}
	}
	if len(v.MeasureAt) != 1 {
		t.Fatalf("expected exactly one MeasureStart, got %d", len(v.MeasureAt))
	}
	if _, ok := v.MeasureAt[v.Playables[0]]; !ok {
		t.Fatalf("expected the MeasureStart to sit on the first note")
	}
	for i := 0; i+1 < len(v.Playables); i++ {
		n, ok := v.Playables[i].(*Note)
		if !ok {
			t.Fatalf("playable %d is not a *Note", i)
		}
		if n.NextPlayable != v.Playables[i+1] {
			t.Fatalf("playable %d.NextPlayable does not chain to playable %d", i, i+1)
		}
	}
}

func TestTransformRepeat(t *testing.T) {
	voices := mustParse(t, "X:1\nM:4/4\nK:C\n|:CDEF:|\n")
	song, errs := NewTransformer(DefaultOptions()).Transform(voices)
	if len(errs) != 0 {
		t.Fatalf("unexpected transform errors: %v", errs)
	}
	v := song.Voices[1]
	if len(v.Playables) != 4 {
		t.Fatalf("expected 4 playables, got %d", len(v.Playables))
	}
	if len(v.Gotos) != 1 {
		t.Fatalf("expected exactly one Goto, got %d: %+v", len(v.Gotos), v.Gotos)
	}
	g := v.Gotos[0]
	if !g.IsRepeat {
		t.Fatalf("expected the repeat Goto to have IsRepeat=true")
	}
	if g.Distance != 2 {
		t.Fatalf("expected default repeat distance 2, got %d", g.Distance)
	}
	if g.From != v.Playables[3] || g.To != v.Playables[0] {
		t.Fatalf("expected Goto from the 4th note back to the 1st")
	}
}

func TestTransformVariantEndings(t *testing.T) {
	voices := mustParse(t, "X:1\nM:4/4\nK:C\n|:CD|1 EF:|2 GA|\n")
	song, errs := NewTransformer(DefaultOptions()).Transform(voices)
	if len(errs) != 0 {
		t.Fatalf("unexpected transform errors: %v", errs)
	}
	v := song.Voices[1]
	if len(v.Playables) != 6 {
		t.Fatalf("expected 6 notes, got %d", len(v.Playables))
	}
	// C D E F G A
	c, d, e, f, g, a := v.Playables[0], v.Playables[1], v.Playables[2], v.Playables[3], v.Playables[4], v.Playables[5]
	_ = d
	_ = a

	var repeat, startline *Goto
	for _, got := range v.Gotos {
		switch {
		case got.IsRepeat:
			repeat = got
		default:
			startline = got
		}
	}
	if repeat == nil {
		t.Fatalf("expected a repeat Goto, got none among %+v", v.Gotos)
	}
	if repeat.From != f || repeat.To != c {
		t.Fatalf("expected repeat Goto from F back to C")
	}
	if repeat.Distance != 2 {
		t.Fatalf("expected default repeat distance 2, got %d", repeat.Distance)
	}

	if startline == nil {
		t.Fatalf("expected a variant startline Goto, got none among %+v", v.Gotos)
	}
	if startline.From != f || startline.To != g {
		t.Fatalf("expected startline Goto from the bar-close (F) to GA[0] (G)")
	}
	if startline.Distance != -10 {
		t.Fatalf("expected startline distance -10, got %d", startline.Distance)
	}
	if len(v.Gotos) != 2 {
		t.Fatalf("expected exactly 2 Gotos (repeat + startline); the sole non-last ending is also the repeatEnd entry and is excluded from endline synthesis, and no music follows the closing bar so no followup fires -- got %d: %+v", len(v.Gotos), v.Gotos)
	}
	_ = e
}

func TestTransformChordSynchPoint(t *testing.T) {
	voices := mustParse(t, "X:1\nM:4/4\nK:C\n[CEG]2|\n")
	song, errs := NewTransformer(DefaultOptions()).Transform(voices)
	if len(errs) != 0 {
		t.Fatalf("unexpected transform errors: %v", errs)
	}
	v := song.Voices[1]
	if len(v.Playables) != 1 {
		t.Fatalf("expected 1 playable (the chord), got %d", len(v.Playables))
	}
	sp, ok := v.Playables[0].(*SynchPoint)
	if !ok {
		t.Fatalf("expected a *SynchPoint, got %T", v.Playables[0])
	}
	if len(sp.Notes) != 3 {
		t.Fatalf("expected 3 constituent notes, got %d", len(sp.Notes))
	}
	if sp.Beat() != 0 {
		t.Fatalf("expected the chord at beat 0, got %d", sp.Beat())
	}
}

func TestTransformRestCentering(t *testing.T) {
	voices := mustParse(t, "X:1\nM:4/4\nK:C\nC2 z2 G2|\n")
	song, errs := NewTransformer(DefaultOptions()).Transform(voices)
	if len(errs) != 0 {
		t.Fatalf("unexpected transform errors: %v", errs)
	}
	v := song.Voices[1]
	if len(v.Playables) != 3 {
		t.Fatalf("expected 3 playables, got %d", len(v.Playables))
	}
	rest, ok := v.Playables[1].(*Pause)
	if !ok {
		t.Fatalf("expected the middle playable to be a *Pause, got %T", v.Playables[1])
	}
	pitch, _ := rest.Pitch()
	if pitch != 63 {
		t.Fatalf("expected rest pitch floor((60+67)/2)=63, got %d", pitch)
	}
}

func TestTransformTieMarksStartAndEnd(t *testing.T) {
	voices := mustParse(t, "X:1\nM:4/4\nK:C\nC-C|\n")
	song, errs := NewTransformer(DefaultOptions()).Transform(voices)
	if len(errs) != 0 {
		t.Fatalf("unexpected transform errors: %v", errs)
	}
	v := song.Voices[1]
	if len(v.Playables) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(v.Playables))
	}
	first, ok := v.Playables[0].(*Note)
	if !ok {
		t.Fatalf("first playable is not a *Note")
	}
	second, ok := v.Playables[1].(*Note)
	if !ok {
		t.Fatalf("second playable is not a *Note")
	}
	if !first.TieStart {
		t.Fatalf("expected the first note to have TieStart=true")
	}
	if !second.TieEnd {
		t.Fatalf("expected the second note to have TieEnd=true")
	}
	if first.TieEnd {
		t.Fatalf("did not expect the first note to have TieEnd=true")
	}
	if second.TieStart {
		t.Fatalf("did not expect the second note to have TieStart=true")
	}
}

func TestTransformRepetitionStackUnwindsAtVoiceEnd(t *testing.T) {
	cases := []string{
		"X:1\nM:4/4\nK:C\nCDEF|\n",
		"X:1\nM:4/4\nK:C\n|:CDEF:|\n",
		"X:1\nM:4/4\nK:C\n|:CD|1 EF:|2 GA|\n",
	}
	for _, abc := range cases {
		voices := mustParse(t, abc)
		_, errs := NewTransformer(DefaultOptions()).Transform(voices)
		for _, err := range errs {
			var iv *harperr.InvariantViolation
			if errors.As(err, &iv) {
				t.Fatalf("%q: unexpected invariant violation: %v", abc, err)
			}
		}
	}
}

package abcsym

import "testing"

func TestParseBasicMelody(t *testing.T) {
	abc := "X:1\nT:Test\nM:4/4\nK:C\nCDEF|\n"
	a := NewAdapter(nil)
	voices, errs := a.Parse("test", abc)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	syms := voices[1]
	if len(syms) != 5 { // 4 notes + 1 bar
		t.Fatalf("expected 5 symbols, got %d: %+v", len(syms), syms)
	}
	wantPitch := []int{60, 62, 64, 65}
	for i, want := range wantPitch {
		if syms[i].Type != TypeNote {
			t.Fatalf("symbol %d: expected NOTE, got %v", i, syms[i].Type)
		}
		if got := syms[i].Pitches[0].MIDIPitch; got != want {
			t.Fatalf("symbol %d: expected pitch %d, got %d", i, want, got)
		}
	}
	if syms[4].Type != TypeBar {
		t.Fatalf("expected trailing BAR symbol, got %v", syms[4].Type)
	}
}

func TestGetABCModelCapturesOnce(t *testing.T) {
	abc := "X:1\nK:C\nCC|\n"
	a := NewAdapter(nil)
	voices, _ := a.Parse("test", abc)

	other, _ := NewParser().Parse("test", "X:1\nK:C\nCCCC|\n")
	second := a.GetABCModel(other)

	if len(second[1]) != len(voices[1]) {
		t.Fatalf("GetABCModel should ignore its argument after the first capture: got %d symbols, want %d", len(second[1]), len(voices[1]))
	}
}

func TestNextChainIsLinked(t *testing.T) {
	abc := "X:1\nK:C\nCDE|\n"
	a := NewAdapter(nil)
	voices, _ := a.Parse("test", abc)
	syms := voices[1]
	for i := 0; i+1 < len(syms); i++ {
		if syms[i].Next != syms[i+1] {
			t.Fatalf("symbol %d.Next does not point at symbol %d", i, i+1)
		}
	}
	if syms[len(syms)-1].Next != nil {
		t.Fatalf("last symbol should have nil Next")
	}
}

func TestErrMsgAccumulates(t *testing.T) {
	a := NewAdapter(nil)
	a.ErrMsg("bad token", 3, 7)
	if len(a.Errors()) != 1 {
		t.Fatalf("expected 1 accumulated error, got %d", len(a.Errors()))
	}
}

func TestChordAndRestSymbols(t *testing.T) {
	abc := "X:1\nT:Chord\nM:4/4\nK:C\n[CEG]2 z2 G2|\n"
	a := NewAdapter(nil)
	voices, errs := a.Parse("test", abc)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	syms := voices[1]
	if len(syms) < 3 {
		t.Fatalf("expected at least 3 playable symbols, got %d", len(syms))
	}
	if syms[0].Type != TypeNote || len(syms[0].Pitches) != 3 {
		t.Fatalf("expected a 3-note chord, got %+v", syms[0])
	}
	if syms[1].Type != TypeRest {
		t.Fatalf("expected a REST symbol, got %v", syms[1].Type)
	}
}

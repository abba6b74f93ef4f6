package drawing

import "testing"

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	c := Rect{X: 20, Y: 20, W: 10, H: 10}
	if !a.Overlaps(b) {
		t.Fatalf("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Fatalf("did not expect a and c to overlap")
	}
}

func TestFindOverlapsFlagsIntersectingAnnotations(t *testing.T) {
	annotations := []Annotation{
		{X: 0, Y: 5, Text: "abc"},
		{X: 1, Y: 5, Text: "def"},
		{X: 100, Y: 100, Text: "far away"},
	}
	pairs := FindOverlaps(annotations, 2, 5)
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one overlapping pair, got %d: %v", len(pairs), pairs)
	}
	if pairs[0] != [2]int{0, 1} {
		t.Fatalf("expected the overlap to be (0,1), got %v", pairs[0])
	}
}

func TestPathTranslate(t *testing.T) {
	p := Path{Ops: []PathOp{{Op: "M", X: 1, Y: 2}, {Op: "L", X: 3, Y: 4}}}
	moved := p.Translate(10, -10)
	if moved.Ops[0].X != 11 || moved.Ops[0].Y != -8 {
		t.Fatalf("unexpected translated point: %+v", moved.Ops[0])
	}
	if p.Ops[0].X != 1 {
		t.Fatalf("Translate mutated the original path")
	}
}

func TestRestGlyphFallsBackForUnknownKey(t *testing.T) {
	got := RestGlyph("err")
	want := RestGlyph("d24")
	if len(got.Ops) != len(want.Ops) {
		t.Fatalf("expected the fallback glyph to match the quarter rest shape")
	}
}

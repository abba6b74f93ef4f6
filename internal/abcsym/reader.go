package abcsym

import "unicode"

// reader is a rune cursor over one line of ABC body text, in the style of
// abc2xml's sReader: Next/Peek/UnRead/Eat/SkipSpace, one rune of
// unread-lookahead.
type reader struct {
	runes []rune
	idx int
}

func newReader(line string) *reader {
	return &reader{runes: []rune(line)}
}

func (r *reader) Next() rune {
	if r.idx >= len(r.runes) {
		r.idx++
		return 0
	}
	c:= r.runes[r.idx]
	r.idx++
	return c
}

func (r *reader) Peek() rune {
	if r.idx >= len(r.runes) {
		return 0
	}
	return r.runes[r.idx]
}

func (r *reader) UnRead() {
	if r.idx > 0 {
		r.idx--
	}
}

func (r *reader) AtEnd() bool {
	return r.idx >= len(r.runes)
}

// Eat consumes every consecutive occurrence of c starting at the cursor
// and returns how many were consumed (abc2xml's before/after repeat-colon
// counting uses exactly this shape).
func (r *reader) Eat(c rune) int {
	n:= 0
	for r.Peek() == c {
		r.Next()
		n++
	}
	return n
}

func (r *reader) SkipSpace() {
	for unicode.IsSpace(r.Peek()) {
		r.Next()
	}
}

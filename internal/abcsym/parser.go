package abcsym

import (
	"strconv"
	"strings"
	"unicode"
)

// PARSERWhole is the parser's ticks-per-whole-note resolution used only
// for the NOTE duration-normalization formula; it is independent of the
// coarser per-voice time clock used for beat placement (see
// Symbol.LUnits and the transformer's per-voice "time" advance, both
// driven from the L-unit count rather than PARSERWhole).
const PARSERWhole = 1536

// pitchSemitone maps an ABC note letter (A-G) to its semitone offset
// within an octave, C natural = 0.
var pitchSemitone = map[rune]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Tune is one parsed ABC tune: a header plus the per-voice symbol chains
// captured during parsing.
type Tune struct {
	Index int
	Title string
	MeterNum int
	MeterDeno int
	KeyFifths int
	KeyTonic string
	VoiceTB map[int][]*Symbol // per-voice symbol chain, in source order
	Errors []ParseError
}

// Parser is the black-box ABC-to-tune parser, reduced to the operations
// the adapter actually drives.
type Parser interface {
	Parse(name, abcText string) (*Tune, error)
}

// defaultParser is a real, if deliberately narrow, ABC tokenizer covering
// the playable subset of the ABC grammar: notes, rests, chords, bar lines
// (with repeats and variant endings), ties, inline part markers, and
// quoted text annotations. Slur parentheses and decorations are skipped
// (SlurStarts, SlurEnds and Decorations stay empty), and a tuplet marker
// such as "(3" becomes a pass-through TypeOther symbol; the notes after
// it keep TupletP 1 and their written durations.
// Grounded on other_examples/py60800-abc2xml__parser.go's bar/key
// handling technique (before/after repeat-colon counts, ending-number
// detection), rewritten against this module's own Symbol shape.
type defaultParser struct{}

// NewParser returns the module's built-in ABC tokenizer.
func NewParser() Parser { return defaultParser{} }

func (defaultParser) Parse(name, abcText string) (*Tune, error) {
	lines:= strings.Split(abcText, "\n")
	tune:= &Tune{MeterNum: 4, MeterDeno: 4, VoiceTB: map[int][]*Symbol{}}

	currentVoice:= 1
	charOffset:= 0
	unitFracSetExplicitly:= false
	unitNum, unitDenom:= 1, 8

	pending:= pendingAnnotations{}

	for lineNo, line:= range lines {
		trimmed:= strings.TrimRight(line, "\r")
		if isHeaderLine(trimmed) {
			field, rest:= trimmed[0], strings.TrimSpace(trimmed[2:])
			switch field {
			case 'X':
				if n, err:= strconv.Atoi(rest); err == nil {
					tune.Index = n
				}
			case 'T':
				if tune.Title == "" {
					tune.Title = rest
				}
			case 'M':
				num, den, ok:= parseMeter(rest)
				if ok {
					tune.MeterNum, tune.MeterDeno = num, den
				}
			case 'L':
				num, den, ok:= parseFraction(rest)
				if ok {
					unitNum, unitDenom = num, den
					unitFracSetExplicitly = true
				}
			case 'K':
				tonic, fifths:= parseKey(rest)
				tune.KeyTonic, tune.KeyFifths = tonic, fifths
			case 'V':
				if n, err:= strconv.Atoi(strings.Fields(rest)[0]); err == nil {
					currentVoice = n
				}
			}
			charOffset += len(line) + 1
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "%") {
			charOffset += len(line) + 1
			continue
		}

		if !unitFracSetExplicitly {
			ratio:= float64(tune.MeterNum) / float64(tune.MeterDeno)
			if ratio >= 0.75 {
				unitNum, unitDenom = 1, 4
			} else {
				unitNum, unitDenom = 1, 8
			}
		}

		syms:= parseBodyLine(trimmed, lineNo, charOffset, currentVoice, unitNum, unitDenom, &pending)
		tune.VoiceTB[currentVoice] = append(tune.VoiceTB[currentVoice], syms...)
		charOffset += len(line) + 1
	}

	return tune, nil
}

func isHeaderLine(line string) bool {
	if len(line) < 2 || line[1] != ':' {
		return false
	}
	c:= line[0]
	return (c >= 'A' && c <= 'Z') && c != 0
}

func parseFraction(s string) (num, den int, ok bool) {
	parts:= strings.SplitN(strings.TrimSpace(s), "/", 2)
	n, err:= strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	if len(parts) == 1 {
		return n, 1, true
	}
	d, err:= strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || d == 0 {
		return 0, 0, false
	}
	return n, d, true
}

func parseMeter(s string) (num, den int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "C" {
		return 4, 4, true
	}
	if s == "C|" {
		return 2, 2, true
	}
	return parseFraction(s)
}

// parseKey adapts abc2xml's circle-of-fifths table (other_examples
// py60800-abc2xml__info.go) to resolve a K: tonic into a fifths count.
var keyFifths = map[string]int{
	"C": 0, "G": 1, "D": 2, "A": 3, "E": 4, "B": 5, "F#": 6, "C#": 7,
	"F": -1, "Bb": -2, "Eb": -3, "Ab": -4, "Db": -5, "Gb": -6, "Cb": -7,
	"Am": 0, "Em": 1, "Bm": 2, "F#m": 3, "C#m": 4, "G#m": 5, "D#m": 6,
	"Dm": -1, "Gm": -2, "Cm": -3, "Fm": -4, "Bbm": -5, "Ebm": -6,
}

func parseKey(s string) (tonic string, fifths int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "C", 0
	}
	note:= string(unicode.ToUpper(rune(s[0])))
	i:= 1
	if i < len(s) && (s[i] == '#' || s[i] == 'b') {
		note += string(s[i])
		i++
	}
	mode:= strings.TrimSpace(s[i:])
	key:= note
	if strings.HasPrefix(mode, "m") && !strings.HasPrefix(mode, "maj") {
		key += "m"
	}
	return note, keyFifths[key]
}

// pendingAnnotations carries quoted ABC "annotation" text forward to the
// next symbol produced, and tracks whether a numbered ending bracket is
// currently open across bar lines -- volta open/close is a property of
// the whole tune's bar sequence, not of a single bar token.
type pendingAnnotations struct {
	texts    []string
	inVolta  bool
}

func parseBodyLine(line string, lineNo, lineCharOffset, voice, unitNum, unitDenom int, pending *pendingAnnotations) []*Symbol {
	var out []*Symbol
	r:= newReader(line)
	col:= 0

	emit:= func(sym *Symbol) {
		sym.StartLine = lineNo
		sym.StartCol = col
		sym.EndLine = lineNo
		sym.VoiceIndex = voice
		sym.ChordText = append(sym.ChordText, pending.texts...)
		pending.texts = nil
		out = append(out, sym)
	}

	for !r.AtEnd() {
		startCol:= r.idx
		c:= r.Next()
		startChar:= lineCharOffset + startCol

		switch {
		case c == '"':
			txt:= readUntil(r, '"')
			pending.texts = append(pending.texts, txt)

		case c == '[' && isPartInline(r):
			label:= readUntil(r, ']')
			label = strings.TrimPrefix(label, "P:")
			emit(&Symbol{Type: TypePart, StartChar: startChar, EndChar: lineCharOffset + r.idx, PartLabel: label})

		case c == '[':
			// chord: collect constituent notes until ']'
			pitches, tuplet:= readChord(r)
			dur, lUnits:= readDuration(r, unitNum, unitDenom)
			sym:= &Symbol{
				Type: TypeNote,
				StartChar: startChar,
				EndChar: lineCharOffset + r.idx,
				Pitches: pitches,
				RawDuration: dur,
				LUnits: lUnits,
				TupletP: tuplet,
			}
			emit(sym)

		case c == 'z' || c == 'Z' || c == 'x':
			dur, lUnits:= readDuration(r, unitNum, unitDenom)
			emit(&Symbol{Type: TypeRest, StartChar: startChar, EndChar: lineCharOffset + r.idx, RawDuration: dur, LUnits: lUnits})

		case isNoteLetter(c):
			r.UnRead()
			pitch:= readPitch(r)
			dur, lUnits:= readDuration(r, unitNum, unitDenom)
			tieFwd:= r.Peek() == '-'
			if tieFwd {
				r.Next()
			}
			emit(&Symbol{
				Type: TypeNote,
				StartChar: startChar,
				EndChar: lineCharOffset + r.idx,
				Pitches: []PitchedNote{{MIDIPitch: pitch, TieForward: tieFwd}},
				RawDuration: dur,
				LUnits: lUnits,
				TupletP: 1,
			})

		case c == '|' || c == ':':
			r.UnRead()
			sym := readBar(r, lineCharOffset, &startChar, pending)
			emit(sym)

		case c == '(':
			if unicode.IsDigit(r.Peek()) {
				n:= r.Next()
				emit(&Symbol{Type: TypeOther, StartChar: startChar, EndChar: lineCharOffset + r.idx, TupletP: int(n - '0')})
			}
			// else: slur start. This tokenizer does not record slurs, so
			// the "(" is dropped and SlurStarts/SlurEnds stay zero.

		case unicode.IsSpace(c):
			// whitespace between symbols, no-op

		default:
			// pass-through character (decorations, barline spacing, etc.)
		}
		col = r.idx
		_ = startCol
	}
	return out
}

func isPartInline(r *reader) bool {
	save:= r.idx
	ok:= r.Peek() == 'P'
	r.idx = save
	return ok
}

func readUntil(r *reader, stop rune) string {
	var sb strings.Builder
	for {
		c:= r.Next()
		if c == 0 || c == stop {
			break
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func isNoteLetter(c rune) bool {
	switch unicode.ToUpper(c) {
	case 'A', 'B', 'C', 'D', 'E', 'F', 'G':
		return true
	}
	return false
}

// readPitch consumes one ABC pitch token (accidental, letter, octave
// marks) and returns its absolute MIDI pitch, uppercase C = 60 (middle
// C).
func readPitch(r *reader) int {
	accidental:= 0
	for {
		switch r.Peek() {
		case '^':
			r.Next()
			accidental++
		case '_':
			r.Next()
			accidental--
		case '=':
			r.Next()
		default:
			goto letter
		}
	}
letter:
	letter:= r.Next()
	base:= pitchSemitone[unicode.ToUpper(letter)]
	octave:= 4
	if unicode.IsLower(letter) {
		octave++
	}
	for {
		switch r.Peek() {
		case '\'':
			r.Next()
			octave++
		case ',':
			r.Next()
			octave--
		default:
			return 60 + base + accidental + (octave-4)*12
		}
	}
}

// readChord consumes notes up to the closing ']' of a chord bracket.
func readChord(r *reader) (notes []PitchedNote, tuplet int) {
	tuplet = 1
	for {
		c:= r.Peek()
		if c == 0 || c == ']' {
			r.Next()
			return notes, tuplet
		}
		if isNoteLetter(c) || c == '^' || c == '_' || c == '=' {
			pitch:= readPitch(r)
			tieFwd:= r.Peek() == '-'
			if tieFwd {
				r.Next()
			}
			notes = append(notes, PitchedNote{MIDIPitch: pitch, TieForward: tieFwd})
			continue
		}
		r.Next()
	}
}

// readDuration consumes a trailing multiplier (digits and/or slashes) and
// returns both the PARSERWhole-resolution raw duration and the length in default-unit-note (L) units (for
// the per-voice time clock).
func readDuration(r *reader, unitNum, unitDenom int) (rawDur int, lUnits float64) {
	mulNum, mulDen:= 1, 1
	digits:= ""
	for unicode.IsDigit(r.Peek()) {
		digits += string(r.Next())
	}
	if digits != "" {
		mulNum, _ = strconv.Atoi(digits)
	}
	slashes:= 0
	for r.Peek() == '/' {
		r.Next()
		slashes++
		digits = ""
		for unicode.IsDigit(r.Peek()) {
			digits += string(r.Next())
		}
		if digits != "" {
			n, _:= strconv.Atoi(digits)
			mulDen *= n
		} else {
			mulDen *= 2
		}
	}
	_ = slashes
	lUnits = (float64(mulNum) / float64(mulDen))
	unitFrac:= float64(unitNum) / float64(unitDenom)
	rawDur = int(lUnits * unitFrac * PARSERWhole)
	return rawDur, lUnits
}

// readBar consumes a bar-line token, counting leading/trailing repeat
// colons and volta-bracket digits the way abc2xml's parseBar does
// (other_examples/py60800-abc2xml__parser.go), adapted to this module's
// Symbol shape instead of a MusicXML measure tree.
func readBar(r *reader, lineCharOffset int, startChar *int, pending *pendingAnnotations) *Symbol {
	before := r.Eat(':')
	glyph := ""
	b0 := r.Next()
	glyph += string(b0)
	switch {
	case b0 == '|' && r.Peek() == ']':
		r.Next()
		glyph += "]"
	case b0 == '|' && r.Peek() == '|':
		r.Next()
		glyph += "|"
	}
	after := r.Eat(':')

	r.SkipSpace()
	voltaLabel := ""
	rbstart := 0
	c := r.Peek()
	if unicode.IsDigit(c) {
		r.Next()
		voltaLabel = string(c)
		rbstart = 2
	} else if c == '[' {
		r.Next()
		if n := r.Peek(); unicode.IsDigit(n) {
			r.Next()
			voltaLabel = string(n)
			rbstart = 2
		} else {
			r.UnRead()
		}
	}

	// a numbered ending bracket closes at the next bar line encountered
	// once open, regardless of that bar's own repeat colons; opening a
	// fresh bracket here both closes any still-open one and starts anew.
	rbstop := 0
	if pending.inVolta {
		rbstop = 2
	}
	if rbstart == 2 {
		pending.inVolta = true
	} else if rbstop == 2 {
		pending.inVolta = false
	}

	return &Symbol{
		Type: TypeBar,
		StartChar: *startChar,
		EndChar: lineCharOffset + r.idx,
		BarGlyph: glyph,
		BarBeforeColons: before,
		BarAfterColons: after,
		RBStart: rbstart,
		RBStop: rbstop,
		VoltaLabel: voltaLabel,
	}
}

package music

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/veeh-harfe/zupfnoter/internal/abcsym"
	"github.com/veeh-harfe/zupfnoter/internal/harperr"
)

// RestPosition selects how a rest's inferred pitch is derived from its
// neighbors.
type RestPosition string

const (
	RestCenter   RestPosition = "center"
	RestPrevious RestPosition = "previous"
	RestNext     RestPosition = "next"
)

// Options are the handful of scalar configuration knobs the transformer
// reads from the resolved config stack; the caller resolves them before
// invoking Transform so this package stays decoupled from internal/config.
type Options struct {
	ShortestNote          int
	RestPositionDefault   RestPosition
	RestPositionRepeatEnd RestPosition
	DefaultGotoDistance   int
	VariantDistances      [3]int
}

// DefaultOptions mirrors the defaults named in the rest-positioning and
// variant-ending distance rules.
func DefaultOptions() Options {
	return Options{
		ShortestNote:          64,
		RestPositionDefault:   RestCenter,
		RestPositionRepeatEnd: "",
		DefaultGotoDistance:   2,
		VariantDistances:      [3]int{-10, 10, 15},
	}
}

// Transformer runs the per-voice symbol-stream state machine.
type Transformer struct {
	opts Options
}

func NewTransformer(opts Options) *Transformer {
	return &Transformer{opts: opts}
}

// Transform builds a Song from the adapter's per-voice symbol chains. Every
// error accumulated along the way is tagged with a correlation id unique to
// this render, per §7's "logged with source position" requirement.
func (tr *Transformer) Transform(voiceSyms map[int][]*abcsym.Symbol) (*Song, []error) {
	song := NewSong()
	song.CorrelationID = uuid.NewString()
	var errs []error
	for idx, syms := range voiceSyms {
		v, verrs := tr.transformVoice(idx, syms)
		song.AddVoice(v)
		errs = append(errs, verrs...)
	}
	song.Warnings = harperr.Tag(song.CorrelationID, errs)
	return song, song.Warnings
}

// variantEntry is one bracket within a variant-ending group.
type variantEntry struct {
	label       string
	repeatEnd   bool
	isFollowup  bool
	start, stop Playable
}

// vState is the per-voice mutable state table.
type vState struct {
	measureCount      int
	repetitionStack   []Playable
	nextMeasure       bool
	nextRepeatStart   bool
	nextVariantEnding bool
	nextVariantFollow bool

	previousPlayable Playable
	previousPitch    *Note
	tieStarted       bool
	slurCounter      int

	variantGroups [][]variantEntry
	variantNo     int

	partTable map[int]string
	barType   BarType

	currentTime int
}

func (tr *Transformer) transformVoice(index int, syms []*abcsym.Symbol) (*Voice, []error) {
	voice := NewVoice(index, "V"+strconv.Itoa(index))
	st := &vState{
		// the voice's first playable opens its first measure
		nextMeasure:   true,
		variantGroups: [][]variantEntry{{}},
		partTable:     map[int]string{},
	}
	var errs []error

	for i, sym := range syms {
		switch sym.Type {
		case abcsym.TypeNote, abcsym.TypeRest:
			tr.handleNoteOrRest(voice, st, syms, i, &errs)
		case abcsym.TypeBar:
			tr.handleBar(voice, st, sym, &errs)
		case abcsym.TypeMeter:
			// side-effect only; our time model does not depend on the
			// meter's absolute ticks-per-measure, so nothing to record.
		case abcsym.TypePart:
			st.partTable[st.currentTime] = sym.PartLabel
		default:
			// METER/KEY/TEMPO/STAVES and pass-through tags carry no
			// playable-stream side effect beyond what is handled above.
		}
	}

	if len(st.repetitionStack) > 1 {
		errs = append(errs, &harperr.InvariantViolation{Message: "repetition stack not unwound to depth <= 1 at voice end"})
	}

	tr.synthesizeVariantGotos(voice, st)
	return voice, errs
}

func normalizeDuration(rawDur, shortestNote int) int {
	d := int(math.Round(float64(rawDur) / float64(abcsym.PARSERWhole) * float64(shortestNote)))
	return nearestDurationBucket(d)
}

// nearestDurationBucket snaps d to the closest entry in DurationBuckets, so
// every duration that reaches styleFor/restGlyphKey lands on a value those
// lookups actually carry a style for rather than falling through to the
// generic default. DurationBuckets is tiny (12 entries), so a linear scan
// run once per note/rest is plenty.
func nearestDurationBucket(d int) int {
	best := DurationBuckets[0]
	bestDist := abs(d - best)
	for _, b := range DurationBuckets[1:] {
		if dist := abs(d - b); dist < bestDist {
			best, bestDist = b, dist
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (tr *Transformer) handleNoteOrRest(voice *Voice, st *vState, syms []*abcsym.Symbol, i int, errs *[]error) {
	sym := syms[i]
	origin, err := NewOrigin(sym.StartChar, sym.EndChar, "")
	if err != nil {
		*errs = append(*errs, &harperr.TransformError{Message: err.Error(), StartChar: sym.StartChar, VoiceIndex: voice.Index})
		return
	}
	duration := normalizeDuration(sym.RawDuration, tr.opts.ShortestNote)

	var playable Playable
	var lastNote *Note

	if sym.Type == abcsym.TypeRest {
		pause := NewPause(origin, duration)
		pause.Pitch_ = tr.inferRestPitch(st, syms, i)
		playable = pause
	} else {
		if len(sym.Pitches) == 0 {
			*errs = append(*errs, &harperr.InvariantViolation{Message: "note constructed with no pitch"})
			return
		}
		inheritedTie := st.tieStarted
		var notes []*Note
		for _, p := range sym.Pitches {
			n := NewNote(origin, p.MIDIPitch, duration)
			n.TieEnd = inheritedTie
			n.TieStart = p.TieForward
			n.SlurStarts = appendSlurStarts(st, sym.SlurStarts)
			st.slurCounter -= sym.SlurEnds
			n.SlurEnds = sym.SlurEnds
			n.Tuplet = maxInt(sym.TupletP, 1)
			n.Decorations = sym.Decorations
			notes = append(notes, n)
			lastNote = n
		}
		if len(sym.Pitches) == 1 {
			playable = notes[0]
		} else {
			playable = NewSynchPoint(notes)
		}
		st.tieStarted = false
		for _, p := range sym.Pitches {
			if p.TieForward {
				st.tieStarted = true
			}
		}
	}

	if st.nextMeasure {
		playable.SetMeasureStart(true)
		voice.MeasureAt[playable] = &MeasureStart{Companion: playable, BarType: st.barType}
		st.measureCount++
		st.nextMeasure = false
	}

	beatFloat := float64(st.currentTime) / 8.0
	beat := int(beatFloat)
	if beatFloat != math.Trunc(beatFloat) {
		*errs = append(*errs, &harperr.LayoutWarning{Message: "fractional beat rounded down", StartChar: sym.StartChar})
	}
	playable.SetTime(st.currentTime)
	playable.SetBeat(beat)

	tr.linkAndAnnotate(voice, st, playable, sym)

	st.currentTime += int(math.Round(8 * sym.LUnits))

	voice.Append(playable)
	st.previousPlayable = playable
	if lastNote != nil {
		if st.previousPitch != nil {
			st.previousPitch.NextPitch = lastNote
			lastNote.PrevPitch = st.previousPitch
		}
		st.previousPitch = lastNote
	}
}

// appendSlurStarts pushes one slur index for every non-zero 4-bit nibble of
// the symbol's SlurStarts bitfield.
func appendSlurStarts(st *vState, bits int) []int {
	var out []int
	for ; bits > 0; bits >>= 4 {
		if bits&0xf != 0 {
			st.slurCounter++
			out = append(out, st.slurCounter)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// inferRestPitch implements the previous/next/center rest-positioning
// rule, looking ahead through the raw symbol slice for the next NOTE
// when "next" context is needed.
func (tr *Transformer) inferRestPitch(st *vState, syms []*abcsym.Symbol, i int) int {
	prevPitch, havePrev := -1, false
	if st.previousPitch != nil {
		prevPitch, havePrev = st.previousPitch.Pitch_, true
	}
	nextPitch, haveNext := 0, false
	for j := i + 1; j < len(syms); j++ {
		if syms[j].Type == abcsym.TypeNote && len(syms[j].Pitches) > 0 {
			nextPitch, haveNext = syms[j].Pitches[0].MIDIPitch, true
			break
		}
	}

	switch tr.opts.RestPositionDefault {
	case RestPrevious:
		if havePrev {
			return prevPitch
		}
		if haveNext {
			return nextPitch
		}
	case RestNext:
		if haveNext {
			return nextPitch
		}
		if havePrev {
			return prevPitch
		}
	default: // center
		switch {
		case havePrev && haveNext:
			return (prevPitch + nextPitch) / 2
		case havePrev:
			return prevPitch
		case haveNext:
			return nextPitch
		}
	}
	return 60
}

// linkAndAnnotate wires prev/next playable chains, part-table markers,
// pending measure/repeat/variant marks, and the chord-annotation
// mini-language attached to sym.
func (tr *Transformer) linkAndAnnotate(voice *Voice, st *vState, p Playable, sym *abcsym.Symbol) {
	if st.previousPlayable != nil {
		setNextPlayable(st.previousPlayable, p)
		setPrevPlayable(p, st.previousPlayable)
	}

	if label, ok := st.partTable[st.currentTime]; ok {
		p.SetFirstInPart(true)
		ann := &NoteBoundAnnotation{Companion: p, Text: label, Style: "regular", ConfKey: "notebound.partname." + strconv.Itoa(voice.Index) + "." + p.Znid()}
		voice.Annotations = append(voice.Annotations, ann)
		voice.PartAt[p] = &NewPart{Companion: p, Label: label}
	}

	if st.nextRepeatStart {
		st.repetitionStack = append(st.repetitionStack, p)
		p.SetFirstInPart(true)
		st.nextRepeatStart = false
	}

	if st.nextVariantEnding {
		group := st.variantGroups[len(st.variantGroups)-1]
		if len(group) > 0 {
			group[len(group)-1].start = p
		}
		st.nextVariantEnding = false
	}
	if st.nextVariantFollow {
		group := st.variantGroups[len(st.variantGroups)-1]
		if len(group) > 0 {
			group[len(group)-1].start = p
		}
		st.variantGroups[len(st.variantGroups)-1] = group
		// The followup entry just closes out this bracket; any later,
		// unrelated numbered ending starts a fresh group.
		st.variantGroups = append(st.variantGroups, []variantEntry{})
		st.nextVariantFollow = false
	}

	tr.applyChordAnnotations(voice, p, sym.ChordText)
}

func setNextPlayable(p Playable, next Playable) {
	switch t := p.(type) {
	case *Note:
		t.NextPlayable = next
	case *Pause:
		t.NextPlayable = next
	case *SynchPoint:
		t.Notes[len(t.Notes)-1].NextPlayable = next
	}
}

func setPrevPlayable(p Playable, prev Playable) {
	switch t := p.(type) {
	case *Note:
		t.PrevPlayable = prev
	case *Pause:
		t.PrevPlayable = prev
	case *SynchPoint:
		t.Notes[0].PrevPlayable = prev
	}
}

// applyChordAnnotations parses the mini-language attached to a symbol's
// quoted annotation strings: "#<name>"/"!<text>"/"<<text>"/"><text>" each
// synthesize a NoteBoundAnnotation, with '<'/'>' also setting the
// playable's shift direction. ":<label>" and "@..." lines are skipped: no
// jump target is registered for a label, and the only goto distance read
// anywhere is a bar's own "@@<n>" line (see parseGotoDistance).
func (tr *Transformer) applyChordAnnotations(voice *Voice, p Playable, lines []string) {
	for _, line := range lines {
		if line == "" {
			continue
		}
		sigil := line[0]
		rest := line[1:]
		var ann *NoteBoundAnnotation
		switch sigil {
		case ':':
			continue // jump-target labels are neither annotated nor registered
		case '#':
			ann = &NoteBoundAnnotation{Companion: p, Text: rest, Style: "emphasis"}
		case '!':
			ann = &NoteBoundAnnotation{Companion: p, Text: rest, Style: "regular"}
		case '<':
			ann = &NoteBoundAnnotation{Companion: p, Text: rest, Style: "regular", ShiftDir: ShiftLeft}
			setShift(p, ShiftLeft)
		case '>':
			ann = &NoteBoundAnnotation{Companion: p, Text: rest, Style: "regular", ShiftDir: ShiftRight}
			setShift(p, ShiftRight)
		default:
			continue
		}
		if at := strings.LastIndex(ann.Text, "@"); at >= 0 {
			if x, y, ok := parseXY(ann.Text[at+1:]); ok {
				ann.OffsetX, ann.OffsetY = x, y
				ann.Text = ann.Text[:at]
			}
		}
		voice.Annotations = append(voice.Annotations, ann)
	}
}

func setShift(p Playable, dir Shift) {
	switch t := p.(type) {
	case *Note:
		t.ShiftDir = dir
	case *SynchPoint:
		for _, n := range t.Notes {
			n.ShiftDir = dir
		}
	}
}

func parseXY(s string) (x, y float64, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	xf, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	yf, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return xf, yf, true
}

func classifyBarType(glyph string) BarType {
	switch glyph {
	case "||":
		return BarDouble
	case "|]":
		return BarThinThickDouble
	case "[|":
		return BarThickThinDouble
	case ".":
		return BarDotted
	default:
		return BarSimple
	}
}

func parseGotoDistance(lines []string, def int) int {
	for _, line := range lines {
		if !strings.HasPrefix(line, "@@") {
			continue
		}
		parts := strings.Split(line[2:], ",")
		if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			return n
		}
	}
	return def
}

func (tr *Transformer) handleBar(voice *Voice, st *vState, sym *abcsym.Symbol, errs *[]error) {
	st.barType = classifyBarType(sym.BarGlyph)

	if sym.RBStart != 2 && sym.RBStop != 2 {
		st.nextMeasure = true
	}
	if sym.BarAfterColons > 0 {
		st.nextRepeatStart = true
	}

	// RBStop is handled before RBStart: a bar like ":|2" both closes the
	// previous numbered ending and opens the next one in the same token,
	// and the close must land on the entry already in the group, not on
	// the one about to be appended for the new ending.
	if sym.RBStop == 2 {
		group := st.variantGroups[len(st.variantGroups)-1]
		if len(group) > 0 {
			group[len(group)-1].stop = st.previousPlayable
			if sym.BarBeforeColons > 0 {
				group[len(group)-1].repeatEnd = true
				if len(st.repetitionStack) > 0 {
					st.repetitionStack = append(st.repetitionStack, st.repetitionStack[len(st.repetitionStack)-1])
				}
			}
		}
		// A pure close (no RBStart on the same bar) ends the whole bracket:
		// append a followup placeholder for the music that continues after
		// all the numbered endings merge back together; the next playable
		// becomes its start and opens a fresh empty group for any later,
		// unrelated bracket (see linkAndAnnotate). A combined
		// bar like ":|2" is not a pure close -- it hands straight into the
		// next numbered ending, appended below.
		if sym.RBStart != 2 {
			group = append(group, variantEntry{isFollowup: true})
			st.nextVariantFollow = true
		}
		st.variantGroups[len(st.variantGroups)-1] = group
	}

	if sym.RBStart == 2 {
		st.variantNo++
		label := sym.VoltaLabel
		if label == "" {
			label = strconv.Itoa(st.variantNo)
		}
		group := st.variantGroups[len(st.variantGroups)-1]
		group = append(group, variantEntry{label: label})
		st.variantGroups[len(st.variantGroups)-1] = group
		st.nextVariantEnding = true
	}

	if sym.BarBeforeColons > 0 && len(st.repetitionStack) > 0 {
		target := st.repetitionStack[len(st.repetitionStack)-1]
		g := &Goto{
			From:       st.previousPlayable,
			To:         target,
			IsRepeat:   true,
			Distance:   parseGotoDistance(sym.ChordText, tr.opts.DefaultGotoDistance),
			FromAnchor: AnchorAfter,
			ToAnchor:   AnchorBefore,
		}
		voice.Gotos = append(voice.Gotos, g)
		if len(st.repetitionStack) > 1 {
			st.repetitionStack = st.repetitionStack[:len(st.repetitionStack)-1]
		}
		if pause, ok := st.previousPlayable.(*Pause); ok && tr.opts.RestPositionRepeatEnd == RestPrevious {
			if pause.PrevPitch != nil {
				pause.Pitch_ = pause.PrevPitch.Pitch_
			}
		}
	}
}

// synthesizeVariantGotos emits the startline/endline/followup jumps
// described for each well-formed variant-ending group once a voice's
// symbol stream is fully consumed.
func (tr *Transformer) synthesizeVariantGotos(voice *Voice, st *vState) {
	d := tr.opts.VariantDistances
	for _, group := range st.variantGroups {
		if len(group) < 2 {
			continue
		}
		last := len(group) - 1
		if group[last].isFollowup {
			last--
		}
		if last < 1 {
			continue
		}

		rbstop0 := group[0].stop
		for i := 1; i <= last; i++ {
			if group[i].isFollowup {
				continue
			}
			voice.Gotos = append(voice.Gotos, &Goto{
				From: rbstop0, To: group[i].start,
				Distance: d[0], FromAnchor: AnchorAfter, ToAnchor: AnchorBefore,
			})
		}

		for i := 0; i < last; i++ {
			if group[i].repeatEnd {
				continue
			}
			voice.Gotos = append(voice.Gotos, &Goto{
				From: group[i].stop, To: group[last].start,
				Distance: d[1], VerticalAnchor: VerticalAnchorTo,
			})
		}

		if len(group) > last+1 && group[last+1].isFollowup && group[last+1].start != nil {
			voice.Gotos = append(voice.Gotos, &Goto{
				From: group[last].stop, To: group[last+1].start,
				Distance: d[2],
			})
		}
	}
}

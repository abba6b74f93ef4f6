// Package layout is the Layout Engine (C4): it turns a music.Song plus an
// extract selection into a drawing.Sheet of positioned primitives. Nothing
// downstream of this package touches MIDI pitches or beat numbers again --
// everything from here on is sheet-space coordinates.
package layout

import (
	"math"
	"strconv"

	"github.com/veeh-harfe/zupfnoter/internal/drawing"
	"github.com/veeh-harfe/zupfnoter/internal/harperr"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// Options are the geometry/behavior knobs the layout engine reads from the
// resolved config stack. The exact millimeter constants are not pinned down
// by name anywhere outside the config stack's own dotted paths (e.g.
// extract.0.layout.X_SPACING); the defaults below are this module's concrete
// choice, picked for a harp-sized page and documented as an open question
// resolution rather than lifted from any fixed constant in the source
// material.
type Options struct {
	PitchOffset float64
	XSpacing    float64
	XOffset     float64

	BeatResolution   float64
	YScale           float64
	DrawingHeight    float64
	PackMinIncrement float64
	PackMaxSpread    float64
	PackMethod       int

	EllipseSize float64

	LimitA3  bool
	BottomUp bool
	Beaming  bool

	BarNumberPrefix string
	BarNumberVoices map[int]bool
}

// DefaultOptions mirrors a single-page, single-extract harpnote sheet sized
// for a 34-string alto harp.
func DefaultOptions() Options {
	return Options{
		PitchOffset:      -40,
		XSpacing:         3.5,
		XOffset:          10,
		BeatResolution:   4,
		YScale:           1,
		DrawingHeight:    280,
		PackMinIncrement: 2,
		PackMaxSpread:    6,
		PackMethod:       0,
		EllipseSize:      2.4,
		LimitA3:          true,
		BottomUp:         false,
		Beaming:          true,
		BarNumberPrefix:  "",
		BarNumberVoices:  map[int]bool{},
	}
}

// durationStyle is one entry of DURATION_TO_STYLE: the visual size weight
// and whether the bucket represents a dotted duration.
type durationStyle struct {
	sizeWeight float64
	dotted     bool
	flagCount  int
}

// durationToStyle keys on music.DurationBuckets; odd multiples (3,6,12,24,
// 48) are the dotted counterpart of the even bucket below them, matching
// how ABC dotted-note durations normalize. flagCount mirrors the number of
// eighth-note beams below a quarter note.
var durationToStyle = map[int]durationStyle{
	1:  {sizeWeight: 0.35, flagCount: 4},
	2:  {sizeWeight: 0.40, flagCount: 3},
	3:  {sizeWeight: 0.45, dotted: true, flagCount: 3},
	4:  {sizeWeight: 0.50, flagCount: 2},
	6:  {sizeWeight: 0.55, dotted: true, flagCount: 2},
	8:  {sizeWeight: 0.65, flagCount: 1},
	12: {sizeWeight: 0.75, dotted: true, flagCount: 1},
	16: {sizeWeight: 0.85, flagCount: 0},
	24: {sizeWeight: 0.92, dotted: true, flagCount: 0},
	32: {sizeWeight: 1.0, flagCount: 0},
	48: {sizeWeight: 1.05, dotted: true, flagCount: 0},
	64: {sizeWeight: 1.15, flagCount: 0},
}

// restGlyphKey maps a duration bucket onto the "d<n>" key drawing.RestGlyph
// expects.
func restGlyphKey(d int) drawing.RestGlyphKey {
	return drawing.RestGlyphKey("d" + strconv.Itoa(d))
}

func styleFor(d int) durationStyle {
	if s, ok := durationToStyle[d]; ok {
		return s
	}
	return durationStyle{sizeWeight: 0.5}
}

// PitchX implements the X = pitch coordinate rule.
func PitchX(pitch int, opts Options) float64 {
	return (opts.PitchOffset+float64(pitch))*opts.XSpacing + opts.XOffset
}

// Extract selects what a Sheet renders: which voices, which cross-voice
// synchlines, and free-standing notes/annotations. A zero Extract renders
// every voice of the song with no synchlines.
type Extract struct {
	Voices        []int
	SubFlowLines  map[int]bool
	SynchLines    [][2]int
	BarNumbers    map[int]bool
	StringNames   []string
	ExtraNotes    []ExtraNote
}

// ExtraNote is a free-standing annotation at an absolute sheet position,
// from extract.notes.
type ExtraNote struct {
	X, Y float64
	Text string
}

// Build runs the full C4 pipeline: coordinate assignment, beat compression,
// per-voice rendering, cross-voice synchlines, and the annotation passes.
func Build(song *music.Song, extract Extract, opts Options) (*drawing.Sheet, []error) {
	var errs []error
	voices := selectVoices(song, extract)

	compression := buildCompressionMap(voices, opts)
	maxBeat := 0.0
	for _, y := range compression {
		if y > maxBeat {
			maxBeat = y
		}
	}
	startPos := 0.0
	if len(compression) > 0 {
		startPos = minMapValue(compression)
	}
	fullSpacing := math.Inf(1)
	if maxBeat > startPos {
		fullSpacing = (opts.DrawingHeight - startPos) / (maxBeat - startPos)
	}
	beatSpacing := math.Min(fullSpacing, opts.PackMaxSpread*opts.YScale/opts.BeatResolution)
	if math.IsInf(beatSpacing, 1) || beatSpacing <= 0 {
		beatSpacing = 1
	}

	sheet := drawing.NewSheet(400, opts.DrawingHeight+20)

	positionsByVoice := make(map[int]map[music.Playable]position, len(voices))
	for _, v := range voices {
		positions, verrs := renderVoice(sheet, v, extract, compression, beatSpacing, opts)
		positionsByVoice[v.Index] = positions
		errs = append(errs, verrs...)
	}

	renderSynchLines(sheet, song, extract, positionsByVoice)
	renderAnnotationPasses(sheet, voices, extract, positionsByVoice, opts)

	return sheet, errs
}

func minMapValue(m map[int]float64) float64 {
	first := true
	var out float64
	for _, v := range m {
		if first || v < out {
			out = v
			first = false
		}
	}
	return out
}

func selectVoices(song *music.Song, extract Extract) []*music.Voice {
	if len(extract.Voices) == 0 {
		var out []*music.Voice
		for _, idx := range song.VoiceIndices() {
			out = append(out, song.Voices[idx])
		}
		return out
	}
	var out []*music.Voice
	for _, idx := range extract.Voices {
		if v, ok := song.Voices[idx]; ok {
			out = append(out, v)
		}
	}
	return out
}

// yFor maps a compressed beat to a sheet Y using beatSpacing, honoring
// bottomup.
func yFor(compressedBeat, beatSpacing float64, opts Options) float64 {
	y := compressedBeat * beatSpacing
	if opts.BottomUp {
		return opts.DrawingHeight - y
	}
	return y
}

// compressedBeat interpolates a Playable's original beat against the
// compression map, linearly interpolating between bracketing known beats
// when the exact beat is absent (e.g. mid-chord alignment).
func compressedBeat(beat int, compression map[int]float64) float64 {
	if v, ok := compression[beat]; ok {
		return v
	}
	var lowerBeat, upperBeat int
	var lowerVal, upperVal float64
	haveLower, haveUpper := false, false
	for b, v := range compression {
		if b <= beat && (!haveLower || b > lowerBeat) {
			lowerBeat, lowerVal, haveLower = b, v, true
		}
		if b >= beat && (!haveUpper || b < upperBeat) {
			upperBeat, upperVal, haveUpper = b, v, true
		}
	}
	switch {
	case haveLower && haveUpper && upperBeat != lowerBeat:
		frac := float64(beat-lowerBeat) / float64(upperBeat-lowerBeat)
		return lowerVal + frac*(upperVal-lowerVal)
	case haveLower:
		return lowerVal
	case haveUpper:
		return upperVal
	default:
		return 0
	}
}

// harperrWarn is a tiny helper so renderVoice's call sites read like the
// rest of the transformer's accumulate-and-continue error style.
func harperrWarn(message string, startChar int) error {
	return &harperr.LayoutWarning{Message: message, StartChar: startChar}
}

package layout

import (
	"sort"

	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// CompressionMap exposes buildCompressionMap for callers inspecting the
// layout engine's beat spacing without running a full Build, e.g. the live
// compression-map view in internal/tui.
func CompressionMap(voices []*music.Voice, opts Options) map[int]float64 {
	return buildCompressionMap(voices, opts)
}

// buildCompressionMap implements the content-aware beat-compression
// algorithm: every beat present across any selected voice maps to a
// layout-space position whose spacing depends on the visual weight of the
// densest Playable at that beat, plus extra room at measure and part
// boundaries.
func buildCompressionMap(voices []*music.Voice, opts Options) map[int]float64 {
	beats := collectBeats(voices)
	if len(beats) == 0 {
		return map[int]float64{}
	}

	if opts.PackMethod == 2 {
		out := make(map[int]float64, len(beats))
		for _, b := range beats {
			out[b] = float64(b)
		}
		return out
	}

	scaledMinIncrement := opts.PackMinIncrement * opts.BeatResolution

	out := make(map[int]float64, len(beats))
	var lastSize, pos float64
	for i, beat := range beats {
		size := beatSizeWeight(voices, beat, opts) * opts.BeatResolution
		if i == 0 {
			out[beat] = 0
			lastSize = size
			continue
		}
		defaultIncrement := (size + lastSize) / 2
		increment := defaultIncrement
		if increment < scaledMinIncrement {
			increment = scaledMinIncrement
		}
		if beatHasMeasureStart(voices, beat) {
			increment += defaultIncrement / 4
		}
		if beatHasFirstInPart(voices, beat) {
			increment += defaultIncrement
		}
		pos += increment
		out[beat] = pos
		lastSize = size
	}
	return out
}

func collectBeats(voices []*music.Voice) []int {
	seen := map[int]bool{}
	var beats []int
	for _, v := range voices {
		for _, b := range v.SortedBeats() {
			if !seen[b] {
				seen[b] = true
				beats = append(beats, b)
			}
		}
	}
	sort.Ints(beats)
	return beats
}

// beatSizeWeight finds the maximum-duration Playable across every voice at
// beat and returns its DURATION_TO_STYLE size weight.
func beatSizeWeight(voices []*music.Voice, beat int, opts Options) float64 {
	maxDur := 0
	for _, v := range voices {
		for _, p := range v.Playables {
			if p.Beat() != beat {
				continue
			}
			if d := p.DurationTicks(); d > maxDur {
				maxDur = d
			}
		}
	}
	return styleFor(maxDur).sizeWeight
}

func beatHasMeasureStart(voices []*music.Voice, beat int) bool {
	for _, v := range voices {
		for _, p := range v.Playables {
			if p.Beat() == beat && p.HasMeasureStart() {
				return true
			}
		}
	}
	return false
}

func beatHasFirstInPart(voices []*music.Voice, beat int) bool {
	for _, v := range voices {
		for _, p := range v.Playables {
			if p.Beat() == beat && p.HasFirstInPart() {
				return true
			}
		}
	}
	return false
}

package music

import "sort"

// Voice is an ordered sequence of music entities. The prev/next chain
// is held by Note/Pause's PrevPitch/NextPitch/PrevPlayable/NextPlayable
// fields, which are pointers to entities of this same voice and are only
// ever set by the transformer that owns the voice, never by an outside
// package.
type Voice struct {
	Index int
	Name string
	// Playables holds the Note, SynchPoint and Pause entities in source
	// order. The non-playable markers live in Gotos, Annotations,
	// MeasureAt and PartAt.
	Playables []Playable
	Gotos []*Goto
	Annotations []*NoteBoundAnnotation
	MeasureAt map[Playable]*MeasureStart
	PartAt map[Playable]*NewPart
}

func NewVoice(index int, name string) *Voice {
	return &Voice{
		Index: index,
		Name: name,
		MeasureAt: map[Playable]*MeasureStart{},
		PartAt: map[Playable]*NewPart{},
	}
}

// Append adds a playable at the end of the voice in source order.
func (v *Voice) Append(p Playable) {
	v.Playables = append(v.Playables, p)
}

// CheckTimeMonotonic verifies that time is non-decreasing within a
// voice.
func (v *Voice) CheckTimeMonotonic() bool {
	for i:= 1; i < len(v.Playables); i++ {
		if v.Playables[i].Time() < v.Playables[i-1].Time() {
			return false
		}
	}
	return true
}

// BeatMap maps a beat integer to the Playable starting at that beat,
// used by cross-voice synchronization.
func (v *Voice) BeatMap() map[int]Playable {
	m:= make(map[int]Playable, len(v.Playables))
	for _, p:= range v.Playables {
		if _, ok:= m[p.Beat()]; !ok {
			m[p.Beat()] = p
		}
	}
	return m
}

// SortedBeats returns every distinct beat present in the voice, ascending.
func (v *Voice) SortedBeats() []int {
	seen:= map[int]bool{}
	var beats []int
	for _, p:= range v.Playables {
		if !seen[p.Beat()] {
			seen[p.Beat()] = true
			beats = append(beats, p.Beat())
		}
	}
	sort.Ints(beats)
	return beats
}

// Song is an unordered set of voices plus metadata and checksum; each
// voice's beat map comes from Voice.BeatMap. By convention voice index 0
// aliases voice 1 so configuration addressing stays one-based.
type Song struct {
	Voices map[int]*Voice
	MetaData map[string]any
	Checksum string
	Warnings []error

	// CorrelationID identifies this render across the parse/transform/layout
	// stages, so warnings and errors from every stage of the same render can
	// be grepped together.
	CorrelationID string
}

func NewSong() *Song {
	return &Song{
		Voices: map[int]*Voice{},
		MetaData: map[string]any{},
	}
}

// AddVoice registers voice under its 1-based index, and aliases index 0
// to it when it is voice 1.
func (s *Song) AddVoice(v *Voice) {
	s.Voices[v.Index] = v
	if v.Index == 1 {
		s.Voices[0] = v
	}
}

// Voice0 returns the voice the song exposes at index 0 (an alias of
// voice 1), or nil if no voices have been added yet.
func (s *Song) Voice0() *Voice {
	return s.Voices[0]
}

// VoiceIndices returns every real (non-alias) voice index, ascending.
func (s *Song) VoiceIndices() []int {
	var idx []int
	for i:= range s.Voices {
		if i == 0 {
			continue
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

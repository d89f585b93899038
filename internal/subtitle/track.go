package subtitle

import (
	"slices"
	"sync"
)

// Track owns the cue sequence for one transcript and the resolver cursor
// that goes with it. Loading a new transcript swaps both together, so a
// cursor from an older, longer sequence is never used against a new one.
type Track struct {
	mu     sync.Mutex
	cues   Sequence
	cursor int
	source string
	linear bool
}

func NewTrack() *Track {
	return &Track{cues: Sequence{}, cursor: NoCue}
}

// Load parses srt and installs the result, discarding the previous
// sequence and resetting the cursor. The raw text is kept for Source.
// The returned cues are a copy.
func (t *Track) Load(srt string) Sequence {
	cues := Parse(srt)
	t.install(cues, srt)
	return slices.Clone(cues)
}

// Install replaces the sequence with a copy of already parsed cues.
func (t *Track) Install(cues Sequence) {
	if cues == nil {
		cues = Sequence{}
	}
	t.install(slices.Clone(cues), "")
}

func (t *Track) install(cues Sequence, source string) {
	linear := !cues.Disjoint()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.cues = cues
	t.source = source
	t.linear = linear
	t.cursor = NoCue
}

// Resolve returns the cue active at playback time at and advances the
// cursor. Overlapping or out-of-order tracks resolve to the first cue in
// sequence order that contains at. The returned cue is a copy.
func (t *Track) Resolve(at float64) (int, *Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		i   int
		cue *Cue
	)
	if t.linear {
		i, cue = FirstActive(t.cues, at)
	} else {
		i, cue = Resolve(t.cues, t.cursor, at)
	}
	t.cursor = i
	if cue == nil {
		return i, nil
	}
	c := *cue
	return i, &c
}

// index of the last resolved cue, or NoCue
func (t *Track) Cursor() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// copy of the current sequence
func (t *Track) Cues() Sequence {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.cues)
}

func (t *Track) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cues)
}

// raw SRT text of the current transcript, empty when installed from cues
func (t *Track) Source() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source
}

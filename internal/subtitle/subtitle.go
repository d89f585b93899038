package subtitle

import (
	"math"
	"time"
)

// NoCue is the cursor value when no cue is active.
const NoCue = -1

// single subtitle cue, times in seconds
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// reports whether t falls inside the cue window; both ends are inclusive
func (c Cue) Contains(t float64) bool {
	return t >= c.Start && t <= c.End
}

func (c Cue) Duration() time.Duration {
	return Seconds(c.End - c.Start)
}

// ordered cues parsed from one SRT document, sorted by Start
type Sequence []Cue

// last end time in the sequence
func (s Sequence) Span() float64 {
	var last float64
	for _, c := range s {
		if c.End > last {
			last = c.End
		}
	}
	return last
}

// reports whether every cue starts at or after the previous one
func (s Sequence) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Start < s[i-1].Start {
			return false
		}
	}
	return true
}

// reports whether cues are sorted and no cue starts before the previous one
// ends. Cues may touch: one ending at the instant the next begins is fine.
func (s Sequence) Disjoint() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Start < s[i-1].End || s[i].Start < s[i-1].Start {
			return false
		}
	}
	return true
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// represents transcribed audio segment
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// interface for subtitle generation
type Generator interface {
	Generate(segments []Segment) (Sequence, error)
}

// interface for writing subtitles to files
type Writer interface {
	Write(cues Sequence, path string) error
	Render(cues Sequence) string
}

// seconds as a duration, rounded to the millisecond
func Seconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1000)) * time.Millisecond
}

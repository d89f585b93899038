package subtitle

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultGenerator implements the Generator interface
type DefaultGenerator struct {
	MaxCharsPerLine int
	MaxLinesPerCue  int
	MaxDuration     float64 // seconds
}

func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{
		MaxCharsPerLine: 42, // Standard subtitle line length
		MaxLinesPerCue:  2,  // Most players support 2 lines
		MaxDuration:     7,
	}
}

// converts transcription segments to a sorted cue sequence
func (g *DefaultGenerator) Generate(segments []Segment) (Sequence, error) {
	cues := Sequence{}

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}

		if g.needsSplit(text, seg.End-seg.Start) {
			cues = append(cues, g.splitSegment(seg)...)
			continue
		}
		cues = append(cues, Cue{
			Start: seg.Start,
			End:   seg.End,
			Text:  g.formatText(text),
		})
	}

	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})
	return cues, nil
}

func (g *DefaultGenerator) needsSplit(text string, duration float64) bool {
	if utf8.RuneCountInString(text) > g.MaxCharsPerLine*g.MaxLinesPerCue {
		return true
	}
	return g.MaxDuration > 0 && duration > g.MaxDuration
}

// splits long segment into multiple cues
func (g *DefaultGenerator) splitSegment(seg Segment) []Cue {
	words := strings.Fields(seg.Text)
	if len(words) == 0 {
		return nil
	}

	maxChars := g.MaxCharsPerLine * g.MaxLinesPerCue
	totalChars := utf8.RuneCountInString(strings.TrimSpace(seg.Text))
	total := seg.End - seg.Start

	numSplits := (totalChars + maxChars - 1) / maxChars
	if numSplits < 1 {
		numSplits = 1
	}
	if g.MaxDuration > 0 {
		if durationSplits := int(total/g.MaxDuration) + 1; durationSplits > numSplits {
			numSplits = durationSplits
		}
	}
	if numSplits > len(words) {
		numSplits = len(words)
	}

	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	step := total / float64(numSplits)

	var cues []Cue
	start := seg.Start
	for i := 0; i < numSplits && len(words) > 0; i++ {
		n := wordsPerSplit
		if n > len(words) {
			n = len(words)
		}
		text := strings.Join(words[:n], " ")
		words = words[n:]

		end := start + step
		// last piece ends exactly at the segment end
		if len(words) == 0 {
			end = seg.End
		}

		cues = append(cues, Cue{Start: start, End: end, Text: g.formatText(text)})
		start = end
	}
	return cues
}

// wraps text onto two lines at the word break closest to the middle
func (g *DefaultGenerator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)
	if runeCount <= g.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}
		if diff := abs(currentLen - middle); diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		return strings.Join(words[:bestSplit], " ") + "\n" + strings.Join(words[bestSplit:], " ")
	}
	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

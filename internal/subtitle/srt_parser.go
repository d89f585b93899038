package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	timingRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
	)
	indexLine = regexp.MustCompile(`^\d+$`)
)

// Parse converts SRT text into cues in block order.
//
// Blocks are separated by blank lines (lines holding only Unicode
// whitespace count as blank). A digits-only first line is treated as the
// sequence index and dropped. A block whose next line is not a timing line is skipped without
// affecting the rest of the document, so a malformed or truncated trailing
// block never costs the whole transcript.
func Parse(srt string) Sequence {
	content := strings.TrimSpace(strings.ReplaceAll(srt, "\r", ""))
	if content == "" {
		return Sequence{}
	}

	blocks := splitBlocks(content)
	cues := make(Sequence, 0, len(blocks))
	for _, lines := range blocks {
		cue, ok := parseBlock(lines)
		if !ok {
			continue
		}
		cues = append(cues, cue)
	}
	return cues
}

// groups lines into blocks; any line that is empty after Unicode
// whitespace trimming (U+3000, NBSP, \v included) ends a block
func splitBlocks(content string) [][]string {
	var (
		blocks  [][]string
		current []string
	)
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(lines []string) (Cue, bool) {
	if indexLine.MatchString(lines[0]) {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return Cue{}, false
	}

	m := timingRegex.FindStringSubmatch(lines[0])
	if m == nil {
		return Cue{}, false
	}

	return Cue{
		Start: timestampFromMatch(m[1:5]),
		End:   timestampFromMatch(m[5:9]),
		Text:  strings.Join(lines[1:], "\n"),
	}, true
}

// fields are guaranteed digits by the timing pattern
func timestampFromMatch(fields []string) float64 {
	var v [4]int
	for i, f := range fields {
		v[i], _ = strconv.Atoi(f)
	}
	return Timestamp(v[0], v[1], v[2], v[3])
}

// Timestamp converts SRT clock components to seconds.
func Timestamp(hours, minutes, seconds, millis int) float64 {
	return float64((hours*60+minutes)*60+seconds) + float64(millis)/1000
}

// SplitTimestamp is the inverse of Timestamp, rounding to the nearest
// millisecond. Negative input is clamped to zero.
func SplitTimestamp(sec float64) (hours, minutes, seconds, millis int) {
	if sec < 0 {
		sec = 0
	}
	total := int64(math.Round(sec * 1000))
	millis = int(total % 1000)
	total /= 1000
	seconds = int(total % 60)
	total /= 60
	minutes = int(total % 60)
	hours = int(total / 60)
	return hours, minutes, seconds, millis
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm.
func FormatTimestamp(sec float64) string {
	h, m, s, ms := SplitTimestamp(sec)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

package subtitle

import "math"

// Resolve returns the index and cue active at t, or (NoCue, nil).
//
// cursor is the index returned by the previous call. While playback advances
// inside the same cue the answer is that cursor, checked in constant time.
// Anything else (first call, a seek in either direction, crossing into a
// gap or the next cue, a cursor left over from a longer sequence) falls
// through to Search. cues is never modified.
//
// The fast path applies the same shared-boundary rule as Search: when t is
// both cues[cursor].Start and cues[cursor-1].End, the earlier cue is
// returned rather than the cursor.
func Resolve(cues Sequence, cursor int, t float64) (int, *Cue) {
	if cursor >= 0 && cursor < len(cues) && cues[cursor].Contains(t) {
		i := settle(cues, cursor, t)
		return i, &cues[i]
	}
	return Search(cues, t)
}

// Search binary-searches cues, which must be sorted by Start, and stops at
// the first probed cue whose window contains t.
//
// When one cue ends exactly where the next begins, t on that shared
// boundary resolves to the earlier cue. For genuinely overlapping cues the
// result is whichever containing cue the search probes first; use
// FirstActive when a stable answer is needed.
func Search(cues Sequence, t float64) (int, *Cue) {
	if math.IsNaN(t) {
		return NoCue, nil
	}
	lo, hi := 0, len(cues)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case t < cues[mid].Start:
			hi = mid - 1
		case t > cues[mid].End:
			lo = mid + 1
		default:
			i := settle(cues, mid, t)
			return i, &cues[i]
		}
	}
	return NoCue, nil
}

// FirstActive scans for the first cue in sequence order whose window
// contains t. It is O(n) but well defined for unsorted or overlapping cues.
func FirstActive(cues Sequence, t float64) (int, *Cue) {
	for i := range cues {
		if cues[i].Contains(t) {
			return i, &cues[i]
		}
	}
	return NoCue, nil
}

// moves a hit back to the earliest cue that also contains t
func settle(cues Sequence, i int, t float64) int {
	for i > 0 && cues[i-1].Contains(t) {
		i--
	}
	return i
}

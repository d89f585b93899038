package player

import (
	"context"
	"fmt"

	"github.com/mgpai22/subplay/internal/subtitle"
)

// LoadFunc produces SRT text for the track, e.g. by uploading the media
// to the transcription proxy. It runs in the background during playback.
type LoadFunc func(ctx context.Context) (string, error)

// Session ties the playback clock to the subtitle track and overlay.
// Tick is called from a single goroutine.
type Session struct {
	Clock   *Clock
	Track   *subtitle.Track
	Overlay *subtitle.Overlay
}

func NewSession(clock *Clock, track *subtitle.Track) *Session {
	if track == nil {
		track = subtitle.NewTrack()
	}
	return &Session{Clock: clock, Track: track, Overlay: subtitle.NewOverlay()}
}

// Tick resolves the active cue at the current clock position. changed is
// true only when the overlay has to be redrawn.
func (s *Session) Tick() (at float64, text string, changed bool) {
	at = s.Clock.Now()
	index, cue := s.Track.Resolve(at)
	text, changed = s.Overlay.Update(index, cue)
	return at, text, changed
}

// Replace swaps in a freshly loaded transcript and clears the overlay.
func (s *Session) Replace(srt string) int {
	cues := s.Track.Load(srt)
	s.Overlay.Reset()
	return len(cues)
}

// formats seconds as m:ss or h:mm:ss
func clockLabel(sec float64) string {
	total := int(sec)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

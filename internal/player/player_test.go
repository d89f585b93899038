package player

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/subplay/internal/subtitle"
)

const transcript = `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:03,000 --> 00:00:04,000
World
`

func newTestSession(t *testing.T, duration float64) (*Session, *fakeTime) {
	t.Helper()
	ft := newFakeTime()
	s := NewSession(NewClock(duration, ft.now), nil)
	s.Replace(transcript)
	return s, ft
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSessionTickReportsChangesOnly(t *testing.T) {
	s, ft := newTestSession(t, 10)
	s.Clock.Play()

	steps := []struct {
		advance float64
		text    string
		changed bool
	}{
		{0.5, "", false},
		{0.5, "Hello", true},
		{0.5, "Hello", false},
		{1, "", true},
		{0.25, "", false},
		{0.75, "World", true},
	}
	for i, step := range steps {
		ft.advance(step.advance)
		_, text, changed := s.Tick()
		if text != step.text || changed != step.changed {
			t.Fatalf("step %d: Tick() = (%q, %v), want (%q, %v)", i, text, changed, step.text, step.changed)
		}
	}
}

func TestSessionReplaceResetsOverlay(t *testing.T) {
	s, _ := newTestSession(t, 10)
	s.Clock.Seek(1.5)
	if _, text, _ := s.Tick(); text != "Hello" {
		t.Fatalf("text = %q", text)
	}

	n := s.Replace("1\n00:00:01,000 --> 00:00:02,000\nBonjour\n")
	if n != 1 {
		t.Fatalf("Replace() = %d cues", n)
	}
	if s.Track.Cursor() != subtitle.NoCue || s.Overlay.Shown() != subtitle.NoCue {
		t.Fatal("expected cursor and overlay to be reset")
	}
	_, text, changed := s.Tick()
	if text != "Bonjour" || !changed {
		t.Errorf("Tick() after replace = (%q, %v)", text, changed)
	}
}

func TestModelKeys(t *testing.T) {
	s, _ := newTestSession(t, 60)
	m := NewModel(context.Background(), s, "clip.mp4", 30, nil)

	m.Update(key("k"))
	if !s.Clock.Playing() {
		t.Fatal("k should start playback")
	}
	m.Update(key("k"))
	if s.Clock.Playing() {
		t.Fatal("k should pause playback")
	}

	m.Update(key("l"))
	if s.Clock.Rate() != 1.25 {
		t.Errorf("rate after l = %v", s.Clock.Rate())
	}
	m.Update(key("j"))
	m.Update(key("j"))
	if s.Clock.Rate() != 0.75 {
		t.Errorf("rate after j j = %v", s.Clock.Rate())
	}

	m.Update(key("right"))
	if !approx(s.Clock.Now(), 5) {
		t.Errorf("position after right = %v", s.Clock.Now())
	}
	m.Update(key("o"))
	if !approx(s.Clock.Now(), 5.1) {
		t.Errorf("position after o = %v", s.Clock.Now())
	}
	m.Update(key("i"))
	m.Update(key("left"))
	if !approx(s.Clock.Now(), 0) {
		t.Errorf("position after i and left = %v", s.Clock.Now())
	}

	m.Update(key("+"))
	if s.Overlay.FontSize() != subtitle.DefaultFontSize+2 {
		t.Errorf("font size after + = %d", s.Overlay.FontSize())
	}
	for i := 0; i < 20; i++ {
		m.Update(key("-"))
	}
	if s.Overlay.FontSize() != subtitle.MinFontSize {
		t.Errorf("font size floor = %d", s.Overlay.FontSize())
	}

	_, cmd := m.Update(key("q"))
	if !m.Quit || cmd == nil {
		t.Fatal("q should quit")
	}
}

func TestModelShowsActiveCue(t *testing.T) {
	s, _ := newTestSession(t, 60)
	m := NewModel(context.Background(), s, "clip.mp4", 30, nil)

	s.Clock.Seek(1.5)
	m.Update(tickMsg{})
	if m.Text() != "Hello" {
		t.Fatalf("Text() = %q", m.Text())
	}
	if !strings.Contains(m.View(), "Hello") {
		t.Error("view does not contain the active cue")
	}

	m.Update(key("s"))
	if m.Text() != "" || strings.Contains(m.View(), "Hello") {
		t.Error("hidden overlay should not render the cue")
	}
	if !strings.Contains(m.View(), "subs off") {
		t.Error("status should show subtitles are off")
	}

	m.Update(key("s"))
	s.Clock.Seek(2.5)
	m.Update(tickMsg{})
	if m.Text() != "" {
		t.Errorf("Text() in a gap = %q", m.Text())
	}
}

func TestModelLoadsTranscriptInBackground(t *testing.T) {
	ft := newFakeTime()
	s := NewSession(NewClock(60, ft.now), nil)
	load := func(context.Context) (string, error) { return transcript, nil }
	m := NewModel(context.Background(), s, "clip.mp4", 30, load)

	if m.Init() == nil {
		t.Fatal("Init() should schedule work")
	}
	if !strings.Contains(m.View(), "transcribing") {
		t.Error("view should show transcription in progress")
	}

	s.Clock.Seek(3.5)
	m.Update(loadedMsg{srt: transcript})
	if s.Track.Len() != 2 {
		t.Fatalf("track has %d cues", s.Track.Len())
	}
	if m.Text() != "World" {
		t.Errorf("Text() = %q", m.Text())
	}
	if !strings.Contains(m.View(), "2 cues loaded") {
		t.Error("view should report loaded cues")
	}

	m.Update(loadedMsg{err: errors.New("server error 500")})
	if !strings.Contains(m.View(), "transcription failed: server error 500") {
		t.Error("view should report the failure")
	}
}

func TestModelWindowResize(t *testing.T) {
	s, _ := newTestSession(t, 60)
	m := NewModel(context.Background(), s, "clip.mp4", 30, nil)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.progress.Width != 96 {
		t.Errorf("progress width = %d", m.progress.Width)
	}
}

func TestRunPlainPrintsCueChanges(t *testing.T) {
	ft := newFakeTime()
	// every clock read moves playback forward by 250ms
	now := func() time.Time {
		ft.advance(0.25)
		return ft.now()
	}
	s := NewSession(NewClock(5, now), nil)
	s.Replace(transcript)

	var out bytes.Buffer
	if err := RunPlain(context.Background(), &out, s, Options{Hz: 1000}); err != nil {
		t.Fatalf("RunPlain() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var texts []string
	for _, line := range lines {
		if i := strings.Index(line, "] "); i >= 0 {
			texts = append(texts, line[i+2:])
		}
	}
	if strings.Join(texts, "|") != "Hello|World" {
		t.Errorf("printed cues %q from output:\n%s", texts, out.String())
	}
}

func TestRunPlainWaitsForPendingLoad(t *testing.T) {
	ft := newFakeTime()
	now := func() time.Time {
		ft.advance(0.25)
		return ft.now()
	}
	s := NewSession(NewClock(0.5, now), nil)

	started := make(chan struct{})
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		close(started)
		<-release
		return transcript, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- RunPlain(context.Background(), &bytes.Buffer{}, s, Options{Hz: 1000, Load: load})
	}()

	<-started
	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("RunPlain() returned %v before the transcript arrived", err)
	default:
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunPlain() failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunPlain() did not return after the transcript arrived")
	}
	if got := s.Track.Len(); got != 2 {
		t.Errorf("track has %d cues, want 2", got)
	}
}

func TestRunPlainLoadFailure(t *testing.T) {
	s := NewSession(NewClock(0, nil), nil)
	load := func(context.Context) (string, error) { return "", errors.New("boom") }

	err := RunPlain(context.Background(), &bytes.Buffer{}, s, Options{Hz: 100, Load: load})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestRunPlainStopsOnCancel(t *testing.T) {
	s := NewSession(NewClock(0, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := RunPlain(ctx, &bytes.Buffer{}, s, Options{}); err != nil {
		t.Fatalf("RunPlain() = %v", err)
	}
}

func TestClockLabel(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{0, "0:00"},
		{65.9, "1:05"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := clockLabel(tt.sec); got != tt.want {
			t.Errorf("clockLabel(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}

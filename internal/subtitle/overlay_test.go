package subtitle

import "testing"

func TestOverlayUpdateOnlyReportsChanges(t *testing.T) {
	cues := gappedCues()
	overlay := NewOverlay()

	steps := []struct {
		at          float64
		wantText    string
		wantChanged bool
	}{
		{0, "", false}, // nothing shown yet, still nothing
		{1, "one", true},
		{1.5, "one", false},
		{2, "one", false},
		{2.5, "", true},
		{2.7, "", false},
		{3, "two", true},
		{11, "four", true},
		{1, "one", true},
	}

	cursor := NoCue
	for _, s := range steps {
		var c *Cue
		cursor, c = Resolve(cues, cursor, s.at)
		text, changed := overlay.Update(cursor, c)
		if text != s.wantText || changed != s.wantChanged {
			t.Errorf(
				"at %v: Update() = (%q, %v), want (%q, %v)",
				s.at, text, changed, s.wantText, s.wantChanged,
			)
		}
	}
}

func TestOverlayResetForcesRedraw(t *testing.T) {
	cue := Cue{Start: 0, End: 1, Text: "hi"}
	overlay := NewOverlay()

	overlay.Update(0, &cue)
	overlay.Reset()
	if overlay.Shown() != NoCue || overlay.Text() != "" {
		t.Fatalf("Reset() left %d/%q", overlay.Shown(), overlay.Text())
	}
	if _, changed := overlay.Update(0, &cue); !changed {
		t.Errorf("Update() after Reset() should report a change")
	}
}

func TestOverlayFontSize(t *testing.T) {
	overlay := NewOverlay()
	if got := overlay.FontSize(); got != DefaultFontSize {
		t.Fatalf("FontSize() = %d, want %d", got, DefaultFontSize)
	}
	if got := overlay.Grow(); got != DefaultFontSize+2 {
		t.Errorf("Grow() = %d, want %d", got, DefaultFontSize+2)
	}
	for i := 0; i < 20; i++ {
		overlay.Shrink()
	}
	if got := overlay.FontSize(); got != MinFontSize {
		t.Errorf("FontSize() after shrinking = %d, want %d", got, MinFontSize)
	}
}

func TestOverlayToggle(t *testing.T) {
	overlay := NewOverlay()
	if !overlay.Enabled() {
		t.Fatal("overlay should start enabled")
	}
	if overlay.Toggle() {
		t.Error("Toggle() should disable")
	}
	if !overlay.Toggle() {
		t.Error("Toggle() should enable again")
	}
}

func TestOverlaySetFontSize(t *testing.T) {
	overlay := NewOverlay()
	tests := []struct {
		set  int
		want int
	}{
		{30, 30},
		{MinFontSize, MinFontSize},
		{4, MinFontSize},
		{-1, MinFontSize},
	}
	for _, tt := range tests {
		if got := overlay.SetFontSize(tt.set); got != tt.want {
			t.Errorf("SetFontSize(%d) = %d, want %d", tt.set, got, tt.want)
		}
	}
}

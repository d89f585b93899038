package subtitle

const (
	DefaultFontSize = 24
	MinFontSize     = 12
	fontSizeStep    = 2
)

// Overlay holds what the subtitle overlay is currently showing. Update
// reports a change only when the resolved cue differs from the shown one,
// so renderers can skip redundant redraws on every playback tick.
type Overlay struct {
	shown    int
	text     string
	enabled  bool
	fontSize int
}

func NewOverlay() *Overlay {
	return &Overlay{shown: NoCue, enabled: true, fontSize: DefaultFontSize}
}

// Update records the resolver output and returns the text to display.
// changed is false when index is the cue already on screen.
func (o *Overlay) Update(index int, cue *Cue) (text string, changed bool) {
	if cue == nil {
		index = NoCue
	}
	if index == o.shown {
		return o.text, false
	}
	o.shown = index
	o.text = ""
	if cue != nil {
		o.text = cue.Text
	}
	return o.text, true
}

// clears the shown cue, e.g. after a new transcript is loaded
func (o *Overlay) Reset() {
	o.shown = NoCue
	o.text = ""
}

func (o *Overlay) Shown() int {
	return o.shown
}

func (o *Overlay) Text() string {
	return o.text
}

func (o *Overlay) Enabled() bool {
	return o.enabled
}

func (o *Overlay) SetEnabled(enabled bool) {
	o.enabled = enabled
}

func (o *Overlay) Toggle() bool {
	o.enabled = !o.enabled
	return o.enabled
}

func (o *Overlay) FontSize() int {
	return o.fontSize
}

func (o *Overlay) Grow() int {
	o.fontSize += fontSizeStep
	return o.fontSize
}

// shrinks the font by one step, never below MinFontSize
func (o *Overlay) Shrink() int {
	o.fontSize -= fontSizeStep
	if o.fontSize < MinFontSize {
		o.fontSize = MinFontSize
	}
	return o.fontSize
}

// SetFontSize sets the font size, never below MinFontSize.
func (o *Overlay) SetFontSize(size int) int {
	o.fontSize = max(size, MinFontSize)
	return o.fontSize
}

package player

import (
	"math"
	"sync"
	"time"
)

const (
	MinRate   = 0.5
	MaxRate   = 2.0
	RateStep  = 0.25
	NudgeStep = 0.1
)

// Clock is the playback position source. It advances at Rate while playing
// and never leaves [0, Duration] when the duration is known.
type Clock struct {
	mu       sync.Mutex
	now      func() time.Time
	playing  bool
	base     float64
	anchor   time.Time
	rate     float64
	duration float64
}

// NewClock returns a paused clock at 0. duration <= 0 means unknown;
// now defaults to time.Now.
func NewClock(duration float64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	return &Clock{now: now, rate: 1, duration: duration}
}

// Now is the current playback position in seconds.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *Clock) position() float64 {
	pos := c.base
	if c.playing {
		pos += c.now().Sub(c.anchor).Seconds() * c.rate
	}
	return c.clamp(pos)
}

func (c *Clock) clamp(pos float64) float64 {
	if pos < 0 {
		return 0
	}
	if c.duration > 0 && pos > c.duration {
		return c.duration
	}
	return pos
}

// re-bases the position so rate or state changes apply from now on
func (c *Clock) rebase() {
	c.base = c.position()
	c.anchor = c.now()
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.play()
}

func (c *Clock) play() {
	if c.playing {
		return
	}
	if c.duration > 0 && c.base >= c.duration {
		c.base = 0
	}
	c.anchor = c.now()
	c.playing = true
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pause()
}

func (c *Clock) pause() {
	if !c.playing {
		return
	}
	c.rebase()
	c.playing = false
}

// Toggle flips between playing and paused and reports the new state.
func (c *Clock) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		c.pause()
	} else {
		c.play()
	}
	return c.playing
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Seek jumps to pos, clamped to the playable range.
func (c *Clock) Seek(pos float64) {
	if math.IsNaN(pos) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.clamp(pos)
	c.anchor = c.now()
}

// Nudge seeks relative to the current position.
func (c *Clock) Nudge(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.clamp(c.position() + delta)
	c.anchor = c.now()
}

func (c *Clock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// SetRate changes the playback rate, clamped to [MinRate, MaxRate].
func (c *Clock) SetRate(rate float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebase()
	c.rate = math.Min(MaxRate, math.Max(MinRate, rate))
	return c.rate
}

func (c *Clock) SlowDown() float64 {
	return c.SetRate(c.Rate() - RateStep)
}

func (c *Clock) SpeedUp() float64 {
	return c.SetRate(c.Rate() + RateStep)
}

func (c *Clock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Ended reports whether playback reached a known duration.
func (c *Clock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration > 0 && c.position() >= c.duration
}

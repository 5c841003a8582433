// Package timesync holds the shared playback clock that links the audio
// player, transcript highlighting and emotion charts. One writer (playback)
// and many readers share a single value guarded by one mutex, so a seek is
// observed atomically: readers never see the clock and the player disagree.
package timesync

import "sync"

// Player is the seekable playback target, typically the audio player.
type Player interface {
	SetPosition(seconds float64)
}

// Coordinator is the single source of truth for "what is happening now".
type Coordinator struct {
	mu      sync.RWMutex
	current float64
	playing bool
	player  Player
}

// New creates a coordinator. The player may be nil when no seekable playback
// exists yet; SeekTo still updates the shared clock.
func New(player Player) *Coordinator {
	return &Coordinator{player: player}
}

// CurrentTime returns the shared playback position in seconds.
func (c *Coordinator) CurrentTime() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Advance is the playback tick: it moves the clock forward without touching
// the player, which is already at that position.
func (c *Coordinator) Advance(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		c.current += seconds
	}
}

// SeekTo repositions both the player and the shared clock under one lock.
func (c *Coordinator) SeekTo(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		c.player.SetPosition(seconds)
	}
	c.current = seconds
}

// SetPlaying starts or pauses the clock.
func (c *Coordinator) SetPlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = playing
}

// Playing reports whether the clock is advancing.
func (c *Coordinator) Playing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playing
}

// Interval is a time window with optional bounds, in seconds. A nil Start
// means "open from the beginning"; End is required for the fallback rule.
type Interval struct {
	Start *float64
	End   *float64
}

// ActiveIndex applies the shared highlighting rule to an ordered set of
// intervals: the active one covers the current time (start <= t <= end); if
// none covers it, the most recently ended interval before t wins, ties broken
// by the latest end. Before the first interval, nothing is active and -1 is
// returned.
func ActiveIndex(intervals []Interval, t float64) int {
	covering := -1
	var coveringEnd float64
	fallback := -1
	var fallbackEnd float64

	for i, iv := range intervals {
		if iv.End == nil {
			continue
		}
		start := 0.0
		if iv.Start != nil {
			start = *iv.Start
		}
		end := *iv.End

		if start <= t && t <= end {
			if covering == -1 || end >= coveringEnd {
				covering = i
				coveringEnd = end
			}
			continue
		}
		if end < t {
			if fallback == -1 || end >= fallbackEnd {
				fallback = i
				fallbackEnd = end
			}
		}
	}

	if covering != -1 {
		return covering
	}
	return fallback
}

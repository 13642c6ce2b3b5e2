package render

import (
	"sync"
	"time"
)

// DefaultHighlightDuration is how long the temperature highlight lasts.
const DefaultHighlightDuration = 700 * time.Millisecond

// Highlighter drives the transient highlight shown after each update.
// Triggering while a highlight is active restarts it: the pending expiry
// is cancelled and replaced, so at most one timer is ever outstanding.
type Highlighter struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	gen      uint64
	active   bool
}

func NewHighlighter(d time.Duration) *Highlighter {
	if d <= 0 {
		d = DefaultHighlightDuration
	}
	return &Highlighter{duration: d}
}

// Trigger starts (or restarts) the highlight.
func (h *Highlighter) Trigger() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timer != nil {
		h.timer.Stop()
	}
	h.gen++
	gen := h.gen
	h.active = true
	h.timer = time.AfterFunc(h.duration, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		// A stopped timer may already have been firing; only the latest
		// generation clears the highlight.
		if h.gen == gen {
			h.active = false
			h.timer = nil
		}
	})
}

// Active reports whether the highlight is currently shown.
func (h *Highlighter) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Pending reports whether an expiry timer is outstanding. Only tests use it,
// to check that no timer is left behind.
func (h *Highlighter) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timer != nil
}

// Stop cancels any pending expiry and clears the highlight.
func (h *Highlighter) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.gen++
	h.active = false
}

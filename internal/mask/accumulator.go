package mask

import (
	"sync"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

// Accumulator owns the committed stroke list for the currently loaded
// image plus the single in-progress candidate stroke. Pointer handlers
// mutate it; the render pipeline and the rasterizer only read snapshots.
//
// Calls that arrive out of state order (an Extend without a Begin, a
// Commit after the pointer left the canvas) are defined no-ops rather
// than errors, so gesture-tracking glitches can never corrupt the mask.
type Accumulator struct {
	mu        sync.RWMutex
	committed []*Stroke
	candidate *Stroke
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// BeginStroke starts a new candidate stroke at the given image-space point
// with the given brush diameter (image pixels). Any previous unfinished
// candidate is discarded.
func (a *Accumulator) BeginStroke(p geometry.Point2D, diameter float64) {
	a.mu.Lock()
	a.candidate = newStroke(p, diameter)
	a.mu.Unlock()
}

// ExtendStroke appends a point to the candidate stroke. No-op when no
// stroke is in progress. Points are captured raw: no deduplication or
// simplification, so the rendered line stays faithful to hand motion at
// any zoom level.
func (a *Accumulator) ExtendStroke(p geometry.Point2D) {
	a.mu.Lock()
	if a.candidate != nil {
		a.candidate.Points = append(a.candidate.Points, p)
	}
	a.mu.Unlock()
}

// CommitStroke moves the candidate stroke onto the committed list and
// clears it. A candidate with no points is discarded silently; a missing
// candidate is a no-op. Returns true if a stroke was committed.
func (a *Accumulator) CommitStroke() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.candidate
	a.candidate = nil
	if s == nil || len(s.Points) == 0 {
		return false
	}
	a.committed = append(a.committed, s)
	return true
}

// Add commits a pre-built stroke directly, bypassing the gesture cycle.
// Used for accepted watermark suggestions. Strokes without points are
// ignored.
func (a *Accumulator) Add(s Stroke) {
	if len(s.Points) == 0 {
		return
	}
	c := s.clone()
	a.mu.Lock()
	a.committed = append(a.committed, &c)
	a.mu.Unlock()
}

// Undo removes the most recently committed stroke. No-op on an empty
// list; never touches the in-progress candidate.
func (a *Accumulator) Undo() {
	a.mu.Lock()
	if n := len(a.committed); n > 0 {
		a.committed = a.committed[:n-1]
	}
	a.mu.Unlock()
}

// Reset clears the committed stroke list.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	a.committed = nil
	a.mu.Unlock()
}

// HasContent reports whether at least one stroke has been committed.
// The processing action in the UI is enabled off this.
func (a *Accumulator) HasContent() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.committed) > 0
}

// Count returns the number of committed strokes.
func (a *Accumulator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.committed)
}

// Drawing reports whether a candidate stroke is in progress.
func (a *Accumulator) Drawing() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.candidate != nil
}

// Snapshot returns deep copies of the committed strokes in commit order.
func (a *Accumulator) Snapshot() []Stroke {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Stroke, len(a.committed))
	for i, s := range a.committed {
		out[i] = s.clone()
	}
	return out
}

// Candidate returns a copy of the in-progress stroke, or false when idle.
func (a *Accumulator) Candidate() (Stroke, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.candidate == nil {
		return Stroke{}, false
	}
	return a.candidate.clone(), true
}

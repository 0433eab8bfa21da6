package engine

import (
	"sort"
	"sync"
	"time"
)

// FrameID identifies a pending frame request.
type FrameID uint64

// FrameScheduler runs a callback before the next repaint.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Duration)) FrameID
	CancelFrame(id FrameID)
}

// ResizeSource notifies when the container may have changed size.
type ResizeSource interface {
	OnResize(fn func()) (cancel func())
}

// StepScheduler is a FrameScheduler driven by explicit Step calls. Render
// loops call Step once per iteration; tests call it to advance frames.
type StepScheduler struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func(time.Duration)
}

func NewStepScheduler() *StepScheduler {
	return &StepScheduler{pending: make(map[FrameID]func(time.Duration))}
}

func (s *StepScheduler) RequestFrame(fn func(now time.Duration)) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending[s.next] = fn
	return s.next
}

func (s *StepScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Step runs every callback that was pending when it was called, in request
// order. Callbacks requested while stepping wait for the next Step.
func (s *StepScheduler) Step(now time.Duration) int {
	s.mu.Lock()
	ids := make([]FrameID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	s.mu.Unlock()

	ran := 0
	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if !ok {
			continue
		}
		fn(now)
		ran++
	}
	return ran
}

// Pending counts callbacks waiting for the next Step.
func (s *StepScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ResizeNotifier is a ResizeSource fed by Notify.
type ResizeNotifier struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func NewResizeNotifier() *ResizeNotifier {
	return &ResizeNotifier{fns: make(map[int]func())}
}

func (r *ResizeNotifier) OnResize(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.fns[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.fns, id)
		r.mu.Unlock()
	}
}

// Notify runs every subscriber.
func (r *ResizeNotifier) Notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.fns))
	for _, fn := range r.fns {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Listeners counts live subscriptions.
func (r *ResizeNotifier) Listeners() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fns)
}

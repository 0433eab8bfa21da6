package interaction

import (
	"sort"
	"sync"

	"github.com/richinsley/gothermal/anim"
)

// EventKind is the type of pointer event.
type EventKind int

const (
	Move EventKind = iota
	Down
	Enter
	Up
	Leave
)

func (k EventKind) String() string {
	switch k {
	case Move:
		return "move"
	case Down:
		return "down"
	case Enter:
		return "enter"
	case Up:
		return "up"
	case Leave:
		return "leave"
	}
	return "unknown"
}

// Event is a pointer event in screen coordinates, y growing downward.
type Event struct {
	Kind EventKind
	X, Y float64
}

// Region is a source of pointer events with a layout box.
type Region interface {
	Bounds() anim.Rect
	// Subscribe registers fn for events of kind. The returned func removes
	// the subscription and may be called more than once.
	Subscribe(kind EventKind, fn func(Event)) (cancel func())
}

// VirtualRegion is an in-memory Region. Windowing code feeds it real events;
// tests and recordings feed it scripted ones.
type VirtualRegion struct {
	mu       sync.Mutex
	bounds   anim.Rect
	next     int
	handlers map[EventKind]map[int]func(Event)
}

func NewVirtualRegion(bounds anim.Rect) *VirtualRegion {
	return &VirtualRegion{
		bounds:   bounds,
		handlers: make(map[EventKind]map[int]func(Event)),
	}
}

func (r *VirtualRegion) Bounds() anim.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounds
}

func (r *VirtualRegion) SetBounds(b anim.Rect) {
	r.mu.Lock()
	r.bounds = b
	r.mu.Unlock()
}

func (r *VirtualRegion) Subscribe(kind EventKind, fn func(Event)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	if r.handlers[kind] == nil {
		r.handlers[kind] = make(map[int]func(Event))
	}
	r.handlers[kind][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.handlers[kind], id)
			r.mu.Unlock()
		})
	}
}

// Dispatch delivers e to every subscriber of its kind, in subscription
// order.
func (r *VirtualRegion) Dispatch(e Event) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.handlers[e.Kind]))
	for id := range r.handlers[e.Kind] {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, r.handlers[e.Kind][id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Listeners counts live subscriptions.
func (r *VirtualRegion) Listeners() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.handlers {
		n += len(m)
	}
	return n
}

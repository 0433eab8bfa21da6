// Package interaction turns pointer events into normalized simulation
// input and an edge-triggered hold state.
package interaction

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/anim"
)

// Config wires a controller to its event sources and consumers.
type Config struct {
	// Container is required. Its bounds normalize global moves.
	Container Region
	// HitRegion is the tighter area that drives hold; defaults to Container.
	HitRegion Region
	// Window, when set, delivers passive global moves.
	Window Region

	// OnPositionUpdate receives the NDC target and the normalized movement
	// since the previous update, always together.
	OnPositionUpdate func(position mgl32.Vec3, direction mgl32.Vec2)
	// OnInteractionChange fires only when hold actually flips.
	OnInteractionChange func(held bool)
}

// State is a snapshot of the controller.
type State struct {
	Hold           bool
	Target         mgl32.Vec3
	LastNX, LastNY float64
}

// Controller owns pointer state. Callbacks run on the goroutine that
// delivered the event, with the controller locked.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	state    State
	cancels  []func()
	disposed bool
}

func New(cfg Config) *Controller {
	if cfg.HitRegion == nil {
		cfg.HitRegion = cfg.Container
	}
	c := &Controller{
		cfg:   cfg,
		state: State{LastNX: 0.5, LastNY: 0.5},
	}

	regions := []Region{cfg.HitRegion}
	if cfg.Container != nil && cfg.Container != cfg.HitRegion {
		regions = append(regions, cfg.Container)
	}
	for _, r := range regions {
		if r == nil {
			continue
		}
		c.cancels = append(c.cancels,
			r.Subscribe(Move, c.onMove),
			r.Subscribe(Down, c.onMove),
			r.Subscribe(Enter, c.onEnter),
			r.Subscribe(Up, c.onRelease),
			r.Subscribe(Leave, c.onRelease),
		)
	}
	if cfg.Window != nil {
		c.cancels = append(c.cancels, cfg.Window.Subscribe(Move, c.onGlobalMove))
	}
	return c
}

func (c *Controller) onMove(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.updatePosition(e.X, e.Y, c.cfg.HitRegion.Bounds())
	c.setHold(true)
}

func (c *Controller) onEnter(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.updatePosition(e.X, e.Y, c.cfg.HitRegion.Bounds())
}

func (c *Controller) onRelease(Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.setHold(false)
}

// onGlobalMove tracks the pointer anywhere on the page, normalized to the
// container. It only engages hold while the pointer is over the container.
func (c *Controller) onGlobalMove(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.cfg.Container == nil {
		return
	}
	bounds := c.cfg.Container.Bounds()
	c.updatePosition(e.X, e.Y, bounds)
	if !bounds.Empty() && bounds.Contains(e.X, e.Y) {
		c.setHold(true)
	}
}

func (c *Controller) updatePosition(x, y float64, bounds anim.Rect) {
	nx, ny := anim.ScreenToNDC(x, y, bounds)
	dx, dy := anim.MovementDelta(x, y, c.state.LastNX, c.state.LastNY, bounds)

	c.state.Target = mgl32.Vec3{float32(nx), float32(ny), 0}
	if c.cfg.OnPositionUpdate != nil {
		c.cfg.OnPositionUpdate(c.state.Target, mgl32.Vec2{float32(dx), float32(dy)})
	}
	c.state.LastNX, c.state.LastNY = anim.Normalize(x, y, bounds)
}

func (c *Controller) setHold(held bool) {
	if c.state.Hold == held {
		return
	}
	c.state.Hold = held
	if c.cfg.OnInteractionChange != nil {
		c.cfg.OnInteractionChange(held)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispose removes every subscription. Safe to call more than once.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	cancels := c.cancels
	c.cancels = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

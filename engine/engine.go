// Package engine runs the thermal effect: it loads the mask, owns every GPU
// resource, and drives the per-frame update and render loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/anim"
	"github.com/richinsley/gothermal/gpu"
	"github.com/richinsley/gothermal/heat"
	"github.com/richinsley/gothermal/inputs"
	"github.com/richinsley/gothermal/interaction"
	"github.com/richinsley/gothermal/options"
	"github.com/richinsley/gothermal/thermal"
	"golang.org/x/sync/errgroup"
)

// Smoothing speeds are per frame at anim.TargetFPS.
const (
	FadeInSpeed   = 0.1
	PointerSpeed  = 0.8
	ScrollSpeed   = 0.2
	MovementSpeed = 0.01
	PowerSpeed    = 0.01

	PowerMin = 0.8
	PowerMax = 1.0

	HoldMoveTarget     = 0.95
	ReleaseMoveTarget  = 1.0
	HoldPowerTarget    = 1.0
	ReleasePowerTarget = 0.8

	HeatMax     = 1.3
	HeatCleanup = 0.001

	MaxPixelRatio = 2
)

var (
	ErrDisposed           = errors.New("engine disposed")
	ErrAlreadyInitialized = errors.New("engine already initialized")
)

// State is the engine lifecycle stage.
type State int

const (
	Uninitialized State = iota
	Initializing
	Running
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config holds the engine's collaborators.
type Config struct {
	Device gpu.Device
	// Container is the box the effect fills. It also delivers pointer events.
	Container interaction.Region
	// HitRegion narrows where pointer events engage hold. Optional.
	HitRegion interaction.Region
	// Window delivers passive global pointer moves. Optional.
	Window interaction.Region
	// PixelRatio scales the framebuffer relative to the container box.
	// Zero means 1; values above MaxPixelRatio are capped.
	PixelRatio float64

	Scheduler FrameScheduler
	Resizes   ResizeSource // optional
	Loader    inputs.Loader

	MaskURL string
	// ColorURL is an optional color source shown inside the mask when
	// videoBlendAmount drops below 1. Empty or equal to MaskURL shares the
	// mask texture.
	ColorURL string

	Params         *options.Params
	Touch          bool
	SimulationSize int
}

// Engine is one running instance of the effect, bound to one container.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	state State

	params options.Params
	values anim.Values
	heatUp float64
	hold   bool
	// direction accumulates pointer movement until the next heat pass.
	direction mgl32.Vec2

	started   bool
	last      time.Duration
	frameID   FrameID
	scheduled bool
	frames    int

	projection mgl32.Mat4
	cancelInit context.CancelFunc

	mask       gpu.Texture
	color      gpu.Texture
	mesh       gpu.Mesh
	heat       *heat.Renderer
	material   *thermal.Material
	controller *interaction.Controller
	cancels    []func()
}

// New validates cfg and returns an engine in the Uninitialized state.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Device == nil:
		return nil, fmt.Errorf("engine config: device is required")
	case cfg.Container == nil:
		return nil, fmt.Errorf("engine config: container is required")
	case cfg.Scheduler == nil:
		return nil, fmt.Errorf("engine config: frame scheduler is required")
	case cfg.Loader == nil:
		return nil, fmt.Errorf("engine config: texture loader is required")
	case cfg.MaskURL == "":
		return nil, fmt.Errorf("engine config: mask URL is required")
	}
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	cfg.PixelRatio = math.Min(cfg.PixelRatio, MaxPixelRatio)

	params := options.DefaultParams()
	if cfg.Params != nil {
		params = *cfg.Params
		params.Clamp()
	}
	return &Engine{
		cfg:        cfg,
		params:     params,
		values:     anim.NewValues(),
		projection: Camera(1, 1),
	}, nil
}

// Init decodes the textures, builds every GPU resource and starts the frame
// loop. It blocks until decoding finishes. If Dispose is called meanwhile,
// Init builds nothing and returns ErrDisposed.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case Disposed:
		e.mu.Unlock()
		return ErrDisposed
	case Initializing, Running:
		e.mu.Unlock()
		return ErrAlreadyInitialized
	}
	e.state = Initializing
	ctx, cancel := context.WithCancel(ctx)
	e.cancelInit = cancel
	e.mu.Unlock()
	defer cancel()

	log.Printf("engine: loading textures (mask %s)", e.cfg.MaskURL)
	maskImg, colorImg, decodeErr := e.decode(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelInit = nil
	if e.state == Disposed {
		log.Printf("engine: disposed while loading textures")
		return ErrDisposed
	}
	if decodeErr != nil {
		e.state = Disposed
		log.Printf("engine: %v", decodeErr)
		return decodeErr
	}
	if err := e.build(maskImg, colorImg); err != nil {
		e.state = Disposed
		log.Printf("engine: %v", err)
		return err
	}

	e.state = Running
	e.resizeLocked()
	e.frameID = e.cfg.Scheduler.RequestFrame(e.frame)
	e.scheduled = true
	log.Printf("engine: running")
	return nil
}

func (e *Engine) decode(ctx context.Context) (maskImg, colorImg image.Image, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := e.cfg.Loader.Load(gctx, e.cfg.MaskURL)
		if err != nil {
			return fmt.Errorf("failed to load mask texture: %w", err)
		}
		maskImg = img
		return nil
	})
	if e.cfg.ColorURL != "" && e.cfg.ColorURL != e.cfg.MaskURL {
		g.Go(func() error {
			img, err := e.cfg.Loader.Load(gctx, e.cfg.ColorURL)
			if err != nil {
				return fmt.Errorf("failed to load color texture: %w", err)
			}
			colorImg = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return maskImg, colorImg, nil
}

// build creates the GPU objects and listeners. On error everything built so
// far is released.
func (e *Engine) build(maskImg, colorImg image.Image) (err error) {
	var undo []func()
	defer func() {
		if err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
			e.mask, e.color, e.mesh, e.heat, e.material, e.controller, e.cancels = nil, nil, nil, nil, nil, nil, nil
		}
	}()
	dev := e.cfg.Device

	e.mask, err = dev.NewTexture(maskImg, gpu.TextureOptions{Wrap: gpu.WrapClamp})
	if err != nil {
		return fmt.Errorf("failed to upload mask texture: %w", err)
	}
	undo = append(undo, e.mask.Release)

	e.color = e.mask
	if colorImg != nil {
		e.color, err = dev.NewTexture(colorImg, gpu.TextureOptions{Wrap: gpu.WrapClamp})
		if err != nil {
			return fmt.Errorf("failed to upload color texture: %w", err)
		}
		undo = append(undo, e.color.Release)
	}

	e.heat, err = heat.New(dev, heat.Options{Size: e.cfg.SimulationSize, Touch: e.cfg.Touch})
	if err != nil {
		return err
	}
	undo = append(undo, e.heat.Dispose)

	e.mesh, err = dev.NewQuad()
	if err != nil {
		return fmt.Errorf("failed to create plane: %w", err)
	}
	undo = append(undo, e.mesh.Release)

	e.material, err = thermal.New(dev, thermal.Textures{
		Draw:  e.heat.Texture(),
		Mask:  e.mask,
		Color: e.color,
	})
	if err != nil {
		return err
	}
	undo = append(undo, e.material.Dispose)
	e.material.UpdateFromParameters(e.params)

	e.controller = interaction.New(interaction.Config{
		Container:           e.cfg.Container,
		HitRegion:           e.cfg.HitRegion,
		Window:              e.cfg.Window,
		OnPositionUpdate:    e.onPosition,
		OnInteractionChange: e.onInteraction,
	})
	if e.cfg.Resizes != nil {
		e.cancels = append(e.cancels, e.cfg.Resizes.OnResize(e.onResize))
	}
	return nil
}

func (e *Engine) onPosition(position mgl32.Vec3, direction mgl32.Vec2) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	e.values.Pointer.Target = position
	e.direction = e.direction.Add(direction)
}

func (e *Engine) onInteraction(held bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	e.hold = held
	if held {
		e.values.Move.Target = HoldMoveTarget
		e.values.Power.Target = HoldPowerTarget
	} else {
		e.values.Move.Target = ReleaseMoveTarget
		e.values.Power.Target = ReleasePowerTarget
	}
}

func (e *Engine) onResize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	e.resizeLocked()
}

// resizeLocked sizes the framebuffer to the container and letterboxes the
// camera. Degenerate bounds are skipped.
func (e *Engine) resizeLocked() {
	b := e.cfg.Container.Bounds()
	if b.Empty() {
		return
	}
	pr := e.cfg.PixelRatio
	w := int(math.Max(1, math.Round(b.Width*pr)))
	h := int(math.Max(1, math.Round(b.Height*pr)))
	e.cfg.Device.Resize(w, h)
	e.projection = Camera(b.Width, b.Height)
}

func (e *Engine) frame(now time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduled = false
	if e.state != Running {
		return
	}

	var dt float64
	if e.started {
		dt = (now - e.last).Seconds()
	}
	e.started = true
	e.last = now

	e.update(dt, now)
	if err := e.render(); err != nil {
		// a failed draw stops the loop; the owner still has to Dispose
		log.Printf("engine: frame %d: %v", e.frames, err)
		return
	}
	e.frames++
	e.frameID = e.cfg.Scheduler.RequestFrame(e.frame)
	e.scheduled = true
}

func (e *Engine) update(dt float64, now time.Duration) {
	p := e.params
	v := &e.values

	v.Pointer.Step(anim.LerpSpeed(PointerSpeed*p.Reactivity/3, dt))
	v.Move.Step(anim.LerpSpeed(MovementSpeed, dt))
	v.Power.Step(anim.LerpSpeed(PowerSpeed, dt))
	v.Power.Value = anim.Clamp(v.Power.Value, PowerMin, PowerMax)
	v.Opacity.Value = anim.Lerp(v.Opacity.Value, v.Opacity.Target*v.Move.Value, anim.LerpSpeed(ScrollSpeed, dt))
	v.Scale.Step(anim.LerpSpeed(ScrollSpeed, dt))
	if v.Amount.Value < 0.99999 {
		v.Amount.Step(anim.LerpSpeed(FadeInSpeed, dt))
	} else {
		v.Amount.Settle()
	}

	e.heat.UpdatePosition(mgl32.Vec2{v.Pointer.Value[0], v.Pointer.Value[1]}, true)
	e.heat.UpdateDraw(e.stepHeat(dt))

	e.material.UpdateFromParameters(p)
	power := p.ContrastPower * v.Power.Value / PowerMin
	e.material.UpdateUniforms(thermal.Update{
		Opacity: &v.Opacity.Value,
		Amount:  &v.Amount.Value,
		Power:   &power,
	})
	e.material.UpdateTime(now.Seconds())
}

// stepHeat advances the accumulator by dt seconds and returns the heat to
// deposit this frame. While held the accumulator never drops; released, it
// only decays.
func (e *Engine) stepHeat(dt float64) float64 {
	k := math.Max(dt*anim.TargetFPS, 0)
	prev := e.heatUp
	if e.hold {
		e.heatUp = math.Min(e.heatUp+e.params.HeatSensitivity*k, HeatMax)
	}
	draw := e.heatUp
	e.heatUp *= math.Pow(e.params.HeatDecay, k)
	if e.hold && e.heatUp < prev {
		e.heatUp = prev
	}
	if e.heatUp < HeatCleanup {
		e.heatUp = 0
	}
	return draw
}

func (e *Engine) render() error {
	b := e.cfg.Container.Bounds()
	e.heat.Resize(b.Width, b.Height)
	e.heat.UpdateDirection(e.direction)
	if err := e.heat.Render(); err != nil {
		return err
	}
	e.direction = mgl32.Vec2{}
	e.material.UpdateTextures(thermal.Textures{Draw: e.heat.Texture()})

	dev := e.cfg.Device
	dev.Clear(nil, mgl32.Vec4{})
	s := float32(e.values.Scale.Value)
	transform := e.projection.Mul4(mgl32.Scale3D(s, s, s))
	if err := e.material.Draw(dev, nil, e.mesh, transform); err != nil {
		return fmt.Errorf("composite pass failed: %w", err)
	}
	return nil
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Parameters returns a copy of the current knobs.
func (e *Engine) Parameters() options.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// SetParameter changes one knob by name; it takes effect next frame.
func (e *Engine) SetParameter(name string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Set(name, value)
}

func (e *Engine) ResetParameters() {
	e.mu.Lock()
	e.params = options.DefaultParams()
	e.mu.Unlock()
}

// Heat is the current heat accumulator.
func (e *Engine) Heat() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heatUp
}

// Values returns a snapshot of the smoothing state.
func (e *Engine) Values() anim.Values {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values
}

// Frames counts rendered frames.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// HeatTexture is the heat surface most recently written, or nil.
func (e *Engine) HeatTexture() gpu.Texture {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.heat == nil {
		return nil
	}
	return e.heat.Texture()
}

// Dispose stops the frame loop, removes every listener and releases every
// GPU resource. It may be called at any time and more than once.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.state == Disposed {
		e.mu.Unlock()
		return
	}
	prev := e.state
	e.state = Disposed
	if e.cancelInit != nil {
		e.cancelInit()
	}
	if e.scheduled {
		e.cfg.Scheduler.CancelFrame(e.frameID)
		e.scheduled = false
	}
	controller, cancels := e.controller, e.cancels
	heatRenderer, material, mesh := e.heat, e.material, e.mesh
	mask, color := e.mask, e.color
	e.controller, e.cancels = nil, nil
	e.heat, e.material, e.mesh = nil, nil, nil
	e.mask, e.color = nil, nil
	e.mu.Unlock()

	// controller callbacks take e.mu, so tear it down unlocked
	if controller != nil {
		controller.Dispose()
	}
	for _, cancel := range cancels {
		cancel()
	}
	if heatRenderer != nil {
		heatRenderer.Dispose()
	}
	if material != nil {
		material.Dispose()
	}
	if mesh != nil {
		mesh.Release()
	}
	if color != nil && color != mask {
		color.Release()
	}
	if mask != nil {
		mask.Release()
	}
	log.Printf("engine: disposed (was %s)", prev)
}

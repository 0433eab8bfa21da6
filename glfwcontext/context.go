package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/gothermal/anim"
	"github.com/richinsley/gothermal/engine"
	"github.com/richinsley/gothermal/interaction"
	"github.com/richinsley/gothermal/options"
)

// Context is a GLFW window that also acts as the effect's pointer and
// resize source. The whole client area is the container; the hit region
// is the centered square the unit plane occupies.
type Context struct {
	window       *glfw.Window
	keyCallbacks map[glfw.Key]func()

	container *interaction.VirtualRegion
	hit       *interaction.VirtualRegion
	resizes   *engine.ResizeNotifier
	insideHit bool
	isGLES    bool
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(opts *options.ThermalOptions, visible bool) (*Context, error) {
	if *opts.GLES {
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 3)
		glfw.WindowHint(glfw.ContextVersionMinor, 0)
	} else {
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}
	glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(*opts.Width, *opts.Height, "gothermal", nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
		container:    interaction.NewVirtualRegion(anim.Rect{}),
		hit:          interaction.NewVirtualRegion(anim.Rect{}),
		resizes:      engine.NewResizeNotifier(),
		isGLES:       *opts.GLES,
	}
	c.layout()

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetCursorPosCallback(c.glfwCursorPosCallback)
	win.SetCursorEnterCallback(c.glfwCursorEnterCallback)
	win.SetMouseButtonCallback(c.glfwMouseButtonCallback)
	win.SetSizeCallback(func(*glfw.Window, int, int) { c.layout(); c.resizes.Notify() })
	win.SetFramebufferSizeCallback(func(*glfw.Window, int, int) { c.resizes.Notify() })

	return c, nil
}

// layout recomputes the region bounds from the window size, in screen
// coordinates.
func (c *Context) layout() {
	w, h := c.window.GetSize()
	c.container.SetBounds(anim.Rect{Width: float64(w), Height: float64(h)})
	c.hit.SetBounds(HitRect(float64(w), float64(h)))
}

// HitRect is the centered square of side min(width, height).
func HitRect(width, height float64) anim.Rect {
	side := width
	if height < side {
		side = height
	}
	return anim.Rect{
		Left:   (width - side) / 2,
		Top:    (height - side) / 2,
		Width:  side,
		Height: side,
	}
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) glfwCursorPosCallback(_ *glfw.Window, x, y float64) {
	e := interaction.Event{Kind: interaction.Move, X: x, Y: y}
	c.container.Dispatch(e)

	inside := c.hit.Bounds().Contains(x, y)
	switch {
	case inside && !c.insideHit:
		c.hit.Dispatch(interaction.Event{Kind: interaction.Enter, X: x, Y: y})
	case !inside && c.insideHit:
		c.hit.Dispatch(interaction.Event{Kind: interaction.Leave, X: x, Y: y})
	}
	c.insideHit = inside
	if inside {
		c.hit.Dispatch(e)
	}
}

func (c *Context) glfwCursorEnterCallback(_ *glfw.Window, entered bool) {
	x, y := c.window.GetCursorPos()
	kind := interaction.Leave
	if entered {
		kind = interaction.Enter
	}
	c.container.Dispatch(interaction.Event{Kind: kind, X: x, Y: y})
}

func (c *Context) glfwMouseButtonCallback(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	x, y := c.window.GetCursorPos()
	kind := interaction.Up
	if action == glfw.Press {
		kind = interaction.Down
	}
	e := interaction.Event{Kind: kind, X: x, Y: y}
	c.container.Dispatch(e)
	if c.hit.Bounds().Contains(x, y) {
		c.hit.Dispatch(e)
	}
}

// Container is the client area as a pointer region.
func (c *Context) Container() *interaction.VirtualRegion {
	return c.container
}

// HitRegion is the centered square that drives hold.
func (c *Context) HitRegion() *interaction.VirtualRegion {
	return c.hit
}

// Resizes notifies on window and framebuffer size changes.
func (c *Context) Resizes() *engine.ResizeNotifier {
	return c.resizes
}

// PixelRatio is framebuffer pixels per screen coordinate.
func (c *Context) PixelRatio() float64 {
	fbWidth, _ := c.window.GetFramebufferSize()
	winWidth, _ := c.window.GetSize()
	if winWidth <= 0 {
		return 1
	}
	return float64(fbWidth) / float64(winWidth)
}

func (c *Context) IsGLES() bool {
	return c.isGLES
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}

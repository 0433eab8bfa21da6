package renderer

import (
	"context"
	"fmt"
	"log"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/gothermal/engine"
	"github.com/richinsley/gothermal/gldevice"
	"github.com/richinsley/gothermal/glfwcontext"
	"github.com/richinsley/gothermal/graphics"
	"github.com/richinsley/gothermal/inputs"
	"github.com/richinsley/gothermal/options"
)

// knobStep is how far one key press moves a parameter.
const knobStep = 0.05

// RunInteractive opens a window and runs the effect until it is closed.
// Must be called from the main thread.
func RunInteractive(opts *options.ThermalOptions, params options.Params) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(opts, true)
	if err != nil {
		return fmt.Errorf("failed to initialize glfw context: %w", err)
	}
	defer win.Shutdown()
	win.MakeCurrent()
	glfw.SwapInterval(1)

	fbWidth, fbHeight := win.GetFramebufferSize()
	dev, err := gldevice.New(fbWidth, fbHeight, win.IsGLES())
	if err != nil {
		return err
	}

	scheduler := engine.NewStepScheduler()
	m, err := MountEffect(context.Background(), engine.Config{
		Device:         dev,
		Container:      win.Container(),
		HitRegion:      win.HitRegion(),
		PixelRatio:     win.PixelRatio(),
		Scheduler:      scheduler,
		Resizes:        win.Resizes(),
		Loader:         inputs.FileLoader{},
		MaskURL:        *opts.MaskFile,
		ColorURL:       *opts.ColorFile,
		Params:         &params,
		Touch:          *opts.Touch,
		SimulationSize: *opts.SimSize,
	})
	if err != nil {
		return err
	}
	defer m.Unmount()

	registerKnobs(win, m.Engine())
	log.Println("Starting interactive render loop...")
	Run(win, scheduler)
	return nil
}

// registerKnobs binds keys to parameter nudges: 1-9 select a knob, up and
// down change it, R resets everything.
func registerKnobs(win *glfwcontext.Context, e *engine.Engine) {
	names := options.Names()
	selected := 0
	for i := range min(len(names), 9) {
		win.RegisterKeyCallback(glfw.Key1+glfw.Key(i), func() {
			selected = i
			v, _ := e.Parameters().Get(names[i])
			log.Printf("Selected %s = %.3f", names[i], v)
		})
	}
	nudge := func(delta float64) func() {
		return func() {
			name := names[selected]
			v, _ := e.Parameters().Get(name)
			if err := e.SetParameter(name, v+delta); err != nil {
				log.Printf("Failed to set %s: %v", name, err)
				return
			}
			v, _ = e.Parameters().Get(name)
			log.Printf("%s = %.3f", name, v)
		}
	}
	win.RegisterKeyCallback(glfw.KeyUp, nudge(knobStep))
	win.RegisterKeyCallback(glfw.KeyDown, nudge(-knobStep))
	win.RegisterKeyCallback(glfw.KeyR, func() {
		e.ResetParameters()
		log.Println("Parameters reset")
	})
}

// Run drives scheduler from the context's clock until the window closes.
func Run(ctx graphics.Context, scheduler *engine.StepScheduler) int {
	startTime := ctx.Time()
	frameCount := 0
	for !ctx.ShouldClose() {
		now := time.Duration((ctx.Time() - startTime) * float64(time.Second))
		frameCount += scheduler.Step(now)
		ctx.EndFrame()
	}
	return frameCount
}

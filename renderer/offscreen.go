package renderer

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/richinsley/gothermal/anim"
	"github.com/richinsley/gothermal/engine"
	"github.com/richinsley/gothermal/gldevice"
	"github.com/richinsley/gothermal/glfwcontext"
	"github.com/richinsley/gothermal/gpu"
	"github.com/richinsley/gothermal/inputs"
	"github.com/richinsley/gothermal/interaction"
	"github.com/richinsley/gothermal/options"
	"github.com/richinsley/gothermal/softdevice"
)

const numBuffers = 3 // frames in flight between renderer and encoder

// RecordConfig describes an offline render.
type RecordConfig struct {
	Device        gpu.Device
	Width, Height int
	FPS           int
	Duration      time.Duration

	MaskURL  string
	ColorURL string
	Params   *options.Params
	Touch    bool
	SimSize  int
	Loader   inputs.Loader
	Sink     FrameSink
}

// Record renders cfg.Duration of the effect at a fixed timestep while a
// scripted pointer sweeps across it. Frames go to cfg.Sink, which is closed
// before Record returns. It returns the number of frames delivered.
func Record(ctx context.Context, cfg RecordConfig) (int, error) {
	switch {
	case cfg.Device == nil:
		return 0, fmt.Errorf("record: device is required")
	case cfg.Sink == nil:
		return 0, fmt.Errorf("record: frame sink is required")
	case cfg.Width <= 0 || cfg.Height <= 0:
		return 0, fmt.Errorf("record: invalid size %dx%d", cfg.Width, cfg.Height)
	case cfg.FPS <= 0:
		return 0, fmt.Errorf("record: invalid fps %d", cfg.FPS)
	case cfg.Duration <= 0:
		return 0, fmt.Errorf("record: invalid duration %v", cfg.Duration)
	}
	loader := cfg.Loader
	if loader == nil {
		loader = inputs.FileLoader{}
	}

	bounds := anim.Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	container := interaction.NewVirtualRegion(bounds)
	scheduler := engine.NewStepScheduler()

	m, err := MountEffect(ctx, engine.Config{
		Device:         cfg.Device,
		Container:      container,
		Scheduler:      scheduler,
		Loader:         loader,
		MaskURL:        cfg.MaskURL,
		ColorURL:       cfg.ColorURL,
		Params:         cfg.Params,
		Touch:          cfg.Touch,
		SimulationSize: cfg.SimSize,
	})
	if err != nil {
		cfg.Sink.Close()
		return 0, err
	}
	defer m.Unmount()

	frameChan := make(chan *image.RGBA, numBuffers)
	encoderDoneChan := make(chan error, 1)
	go runEncoder(cfg.Sink, frameChan, encoderDoneChan)

	total := int(cfg.Duration.Seconds() * float64(cfg.FPS))
	step := time.Second / time.Duration(cfg.FPS)
	dt := float32(step.Seconds())
	script := newSweep(bounds, float32(cfg.Duration.Seconds()))
	log.Printf("Recording %d frames at %dx%d...", total, cfg.Width, cfg.Height)

	sent := 0
	var renderErr error
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			renderErr = err
			break
		}
		for _, ev := range script.advance(dt) {
			container.Dispatch(ev)
		}
		scheduler.Step(time.Duration(i) * step)

		img, err := cfg.Device.ReadPixels(nil)
		if err != nil {
			renderErr = fmt.Errorf("failed to read frame %d: %w", i, err)
			break
		}
		select {
		case frameChan <- img:
			sent++
		case err := <-encoderDoneChan:
			close(frameChan)
			return sent, err
		}
	}
	close(frameChan)
	encErr := <-encoderDoneChan
	if renderErr != nil {
		return sent, renderErr
	}
	return sent, encErr
}

// runEncoder is the consumer. It writes frames from frameChan to sink until
// the channel closes. A failed write is reported right away and the rest of
// the channel is discarded.
func runEncoder(sink FrameSink, frameChan <-chan *image.RGBA, doneChan chan<- error) {
	for img := range frameChan {
		if err := sink.WriteFrame(img); err != nil {
			log.Printf("Error writing frame: %v", err)
			sink.Close()
			doneChan <- err
			for range frameChan {
			}
			return
		}
	}
	doneChan <- sink.Close()
}

// RecordFromOptions runs Record for the command line, on a hidden GL window
// or on the CPU.
func RecordFromOptions(opts *options.ThermalOptions, params options.Params) error {
	width, height := *opts.Width, *opts.Height
	var dev gpu.Device
	switch *opts.Backend {
	case "soft":
		dev = softdevice.New(width, height)
	case "gl":
		if err := glfwcontext.InitGraphics(); err != nil {
			return fmt.Errorf("failed to initialize glfw: %w", err)
		}
		defer glfwcontext.TerminateGraphics()
		win, err := glfwcontext.New(opts, false)
		if err != nil {
			return fmt.Errorf("failed to initialize glfw context: %w", err)
		}
		defer win.Shutdown()
		win.MakeCurrent()
		gdev, err := gldevice.New(width, height, win.IsGLES())
		if err != nil {
			return err
		}
		dev = gdev
	default:
		return fmt.Errorf("unknown backend %q", *opts.Backend)
	}

	sink := NewFFmpegSink(*opts.OutputFile, width, height, *opts.FPS, *opts.FFmpegPath)
	n, err := Record(context.Background(), RecordConfig{
		Device:   dev,
		Width:    width,
		Height:   height,
		FPS:      *opts.FPS,
		Duration: time.Duration(*opts.Duration * float64(time.Second)),
		MaskURL:  *opts.MaskFile,
		ColorURL: *opts.ColorFile,
		Params:   &params,
		Touch:    *opts.Touch,
		SimSize:  *opts.SimSize,
		Sink:     sink,
	})
	if err != nil {
		return err
	}
	log.Printf("Recorded %d frames to %s", n, *opts.OutputFile)
	return nil
}

package graphics

// Context defines the interface for an OpenGL context that presents the
// effect.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the frame and pumps window events.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	IsGLES() bool
}

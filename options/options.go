package options

import "flag"

type ThermalOptions struct {
	Help       *bool
	Mode       *string // interactive or record
	Backend    *string // gl or soft
	Width      *int
	Height     *int
	MaskFile   *string
	ColorFile  *string // optional color source sampled inside the mask
	ParamsFile *string // YAML effect parameters
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFmpegPath *string
	Touch      *bool // use the touch-sized heat brush
	SimSize    *int  // edge length of the heat surfaces
	GLES       *bool
}

// Register binds every option to fs.
func Register(fs *flag.FlagSet) *ThermalOptions {
	return &ThermalOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		Mode:       fs.String("mode", "interactive", "Run mode: interactive or record"),
		Backend:    fs.String("backend", "gl", "Render backend: gl or soft"),
		Width:      fs.Int("width", 800, "Width of the window or output"),
		Height:     fs.Int("height", 800, "Height of the window or output"),
		MaskFile:   fs.String("mask", "", "Image whose alpha channel masks the effect (required)"),
		ColorFile:  fs.String("color", "", "Optional color source image, defaults to the mask"),
		ParamsFile: fs.String("params", "", "YAML file with effect parameters"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "output.mp4", "Output file name for recording"),
		FFmpegPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Touch:      fs.Bool("touch", false, "Use the larger touch brush"),
		SimSize:    fs.Int("simsize", 256, "Edge length of the heat simulation surfaces"),
		GLES:       fs.Bool("gles", false, "Translate shaders to OpenGL ES 3.0"),
	}
}

package renderer

import (
	"fmt"
	"image"
	"io"
	"log"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FrameSink receives rendered frames in order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// ffmpegSink pipes raw RGBA frames into an ffmpeg process.
type ffmpegSink struct {
	pipe   *io.PipeWriter
	errc   chan error
	width  int
	height int
}

// NewFFmpegSink starts ffmpeg encoding width x height RGBA frames at fps
// into output as H.264.
func NewFFmpegSink(output string, width, height, fps int, ffmpegPath string) FrameSink {
	pipeReader, pipeWriter := io.Pipe()

	inputArgs := ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fps,
	}
	outputArgs := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		// yuv420p needs even dimensions
		"vf": "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if ffmpegPath != "" {
		cmd = cmd.SetFfmpegPath(ffmpegPath)
	}

	s := &ffmpegSink{pipe: pipeWriter, errc: make(chan error, 1), width: width, height: height}
	go func() {
		err := cmd.Run()
		// unblock writers if ffmpeg exits early
		pipeReader.CloseWithError(io.ErrClosedPipe)
		s.errc <- err
	}()
	return s
}

func (s *ffmpegSink) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	for y := 0; y < s.height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+s.width*4]
		if _, err := s.pipe.Write(row); err != nil {
			return fmt.Errorf("failed to write frame to ffmpeg: %w", err)
		}
	}
	return nil
}

func (s *ffmpegSink) Close() error {
	s.pipe.Close()
	if err := <-s.errc; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	log.Println("Encoder finished")
	return nil
}

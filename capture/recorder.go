package capture

import (
	"fmt"
	"image"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// RecorderOptions configures an ffmpeg recording.
type RecorderOptions struct {
	OutputFile string
	Width      int
	Height     int
	FPS        int
	// Codec is "h264" (default) or "hevc". It is ignored for .gif and .webm.
	Codec      string
	Bitrate    string
	FFmpegPath string
}

// Recorder pipes raw RGBA frames into an ffmpeg process.
type Recorder struct {
	opts       RecorderOptions
	pipeWriter *io.PipeWriter
	errc       chan error
	frames     int

	closeOnce sync.Once
	closeErr  error
}

func getArgs(opts RecorderOptions) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"framerate": opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{}
	switch strings.ToLower(filepath.Ext(opts.OutputFile)) {
	case ".gif":
		outputArgs["filter_complex"] = "split[a][b];[a]palettegen[p];[b][p]paletteuse"
		outputArgs["loop"] = 0
		return
	case ".webm":
		outputArgs["c:v"] = "libvpx-vp9"
		outputArgs["pix_fmt"] = "yuv420p"
		outputArgs["b:v"] = "0"
		outputArgs["crf"] = 30
		return
	}

	switch runtime.GOOS {
	case "darwin":
		log.Println("Using macOS (VideoToolbox) hardware acceleration.")
		if opts.Codec == "hevc" {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
	default:
		log.Println("Using software encoding pipeline (no hardware acceleration).")
		if opts.Codec == "hevc" {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
	}
	outputArgs["pix_fmt"] = "yuv420p"

	bitrate := opts.Bitrate
	if bitrate == "" {
		bitrate = "25M"
	}
	outputArgs["b:v"] = bitrate

	if opts.Codec == "hevc" && strings.HasSuffix(strings.ToLower(opts.OutputFile), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// NewRecorder starts ffmpeg writing to opts.OutputFile.
func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid recording size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid recording frame rate %d", opts.FPS)
	}
	if opts.OutputFile == "" {
		return nil, fmt.Errorf("recording requires an output file")
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(opts)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
	}

	r := &Recorder{
		opts:       opts,
		pipeWriter: pipeWriter,
		errc:       make(chan error, 1),
	}
	go func() {
		err := ffmpegCmd.Run()
		if err != nil {
			err = fmt.Errorf("ffmpeg failed: %w", err)
		}
		// unblock writers if ffmpeg exits before reading everything
		pipeReader.CloseWithError(io.ErrClosedPipe)
		r.errc <- err
	}()
	return r, nil
}

// WriteFrame sends one frame. Its size must match the recording size.
func (r *Recorder) WriteFrame(img *image.RGBA) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w != r.opts.Width || h != r.opts.Height {
		return fmt.Errorf("frame is %dx%d, recording is %dx%d", w, h, r.opts.Width, r.opts.Height)
	}
	rowSize := w * 4
	if img.Stride == rowSize {
		if _, err := r.pipeWriter.Write(img.Pix[:rowSize*h]); err != nil {
			return fmt.Errorf("failed to write frame %d to ffmpeg: %w", r.frames, err)
		}
	} else {
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+rowSize]
			if _, err := r.pipeWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write frame %d to ffmpeg: %w", r.frames, err)
			}
		}
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close ends the stream and waits for ffmpeg to finish. Later calls return
// the first result.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.pipeWriter.Close()
		r.closeErr = <-r.errc
		if r.closeErr == nil {
			log.Printf("Recorded %d frames to %s", r.frames, r.opts.OutputFile)
		}
	})
	return r.closeErr
}

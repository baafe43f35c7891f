package options

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Modes accepted by -mode.
const (
	ModeInteractive = "interactive"
	ModeSnapshot    = "snapshot"
	ModeRecord      = "record"
)

type ShaderOptions struct {
	ConfigFile  *string
	ShaderFile  *string
	Help        *bool
	Mode        *string
	Duration    *float64
	FPS         *int
	Width       *int
	Height      *int
	Time        *float64 // animation time of a snapshot
	OutputFile  *string
	FFMPEGPath  *string
	Codec       *string
	Bitrate     *string
	Textures    *string // name=path pairs, comma separated
	PresetsFile *string
	Preset      *string
	Watch       *bool
	VSync       *bool
	Translate   *bool // run sources through the shader translator
	Headless    *bool // EGL pbuffer instead of a hidden window
	Seed        *uint64
}

// Register binds every option to a flag in fs.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		ConfigFile:  fs.String("config", "", "TOML config file; flags given on the command line override it"),
		ShaderFile:  fs.String("shader", "", "Fragment shader source file"),
		Help:        fs.Bool("help", false, "Show help message"),
		Mode:        fs.String("mode", ModeInteractive, "Run mode: interactive, snapshot or record"),
		Duration:    fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:         fs.Int("fps", 60, "Frames per second for recording"),
		Width:       fs.Int("width", 1280, "Width of the output"),
		Height:      fs.Int("height", 720, "Height of the output"),
		Time:        fs.Float64("time", 0, "Animation time of a snapshot in seconds"),
		OutputFile:  fs.String("output", "", "Output file (image for snapshot, video for record)"),
		FFMPEGPath:  fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:       fs.String("codec", "h264", "Video codec for recording: h264 or hevc"),
		Bitrate:     fs.String("bitrate", "25M", "Video bitrate for recording"),
		Textures:    fs.String("textures", "", "Texture bindings as name=path, comma separated"),
		PresetsFile: fs.String("presets", "", "YAML presets file"),
		Preset:      fs.String("preset", "", "Preset to apply after loading the shader"),
		Watch:       fs.Bool("watch", true, "Reload the shader when its file changes"),
		VSync:       fs.Bool("vsync", true, "Synchronize frames to the display refresh"),
		Translate:   fs.Bool("translate", true, "Translate shaders to desktop GLSL before compiling"),
		Headless:    fs.Bool("headless", false, "Render snapshots and recordings on an EGL pbuffer (linux)"),
		Seed:        fs.Uint64("seed", 0, "Seed for randomize (0 picks one)"),
	}
}

// Parse parses args, merges the config file named by -config and validates
// the result.
func Parse(name string, args []string, output io.Writer) (*ShaderOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	opts := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *opts.ShaderFile == "" && fs.NArg() > 0 {
		*opts.ShaderFile = fs.Arg(0)
	}
	if *opts.Help {
		fmt.Fprintln(fs.Output(), "Live fragment shader editor")
		fs.PrintDefaults()
		return opts, nil
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *opts.ConfigFile != "" {
		cfg, err := LoadConfig(*opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		opts.Apply(cfg, set)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks option values and combinations.
func (o *ShaderOptions) Validate() error {
	switch *o.Mode {
	case ModeInteractive, ModeSnapshot, ModeRecord:
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.ShaderFile == "" {
		return fmt.Errorf("no shader file given")
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	if *o.Mode == ModeRecord {
		if *o.FPS <= 0 {
			return fmt.Errorf("invalid fps %d", *o.FPS)
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("invalid duration %g", *o.Duration)
		}
	}
	if *o.Headless && *o.Mode == ModeInteractive {
		return fmt.Errorf("-headless requires snapshot or record mode")
	}
	if *o.Preset != "" && *o.PresetsFile == "" {
		return fmt.Errorf("-preset requires -presets")
	}
	if _, err := o.TextureMap(); err != nil {
		return err
	}
	return nil
}

// Output returns the output file, defaulting by mode.
func (o *ShaderOptions) Output() string {
	if *o.OutputFile != "" {
		return *o.OutputFile
	}
	if *o.Mode == ModeRecord {
		return "output.mp4"
	}
	return "snapshot.png"
}

// TextureMap parses -textures into uniform name to file path.
func (o *ShaderOptions) TextureMap() (map[string]string, error) {
	out := make(map[string]string)
	if o.Textures == nil || strings.TrimSpace(*o.Textures) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(*o.Textures, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, path, ok := strings.Cut(pair, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid texture binding %q, want name=path", pair)
		}
		out[name] = path
	}
	return out, nil
}

// ReadShader reads the shader source file.
func (o *ShaderOptions) ReadShader() (string, error) {
	data, err := os.ReadFile(*o.ShaderFile)
	if err != nil {
		return "", fmt.Errorf("failed to read shader: %w", err)
	}
	return string(data), nil
}

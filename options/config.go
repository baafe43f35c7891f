package options

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the TOML form of ShaderOptions. Zero values leave the flag
// default in place.
//
//	shader = "shaders/plasma.frag"
//	mode = "record"
//	width = 1920
//	height = 1080
//
//	[textures]
//	u_image = "textures/noise.png"
type Config struct {
	Shader    string            `toml:"shader"`
	Mode      string            `toml:"mode"`
	Duration  float64           `toml:"duration"`
	FPS       int               `toml:"fps"`
	Width     int               `toml:"width"`
	Height    int               `toml:"height"`
	Time      float64           `toml:"time"`
	Output    string            `toml:"output"`
	FFmpeg    string            `toml:"ffmpeg"`
	Codec     string            `toml:"codec"`
	Bitrate   string            `toml:"bitrate"`
	Textures  map[string]string `toml:"textures"`
	Presets   string            `toml:"presets"`
	Preset    string            `toml:"preset"`
	Watch     *bool             `toml:"watch"`
	VSync     *bool             `toml:"vsync"`
	Translate *bool             `toml:"translate"`
	Headless  *bool             `toml:"headless"`
	Seed      uint64            `toml:"seed"`
}

// LoadConfig reads a TOML config file. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply copies config values into options whose flags were not set on the
// command line. set holds the names of flags that were.
func (o *ShaderOptions) Apply(cfg *Config, set map[string]bool) {
	str := func(flag string, dst *string, v string) {
		if !set[flag] && v != "" {
			*dst = v
		}
	}
	num := func(flag string, dst *int, v int) {
		if !set[flag] && v != 0 {
			*dst = v
		}
	}
	float := func(flag string, dst *float64, v float64) {
		if !set[flag] && v != 0 {
			*dst = v
		}
	}
	boolean := func(flag string, dst *bool, v *bool) {
		if !set[flag] && v != nil {
			*dst = *v
		}
	}

	str("shader", o.ShaderFile, cfg.Shader)
	str("mode", o.Mode, cfg.Mode)
	float("duration", o.Duration, cfg.Duration)
	num("fps", o.FPS, cfg.FPS)
	num("width", o.Width, cfg.Width)
	num("height", o.Height, cfg.Height)
	float("time", o.Time, cfg.Time)
	str("output", o.OutputFile, cfg.Output)
	str("ffmpeg", o.FFMPEGPath, cfg.FFmpeg)
	str("codec", o.Codec, cfg.Codec)
	str("bitrate", o.Bitrate, cfg.Bitrate)
	str("presets", o.PresetsFile, cfg.Presets)
	str("preset", o.Preset, cfg.Preset)
	boolean("watch", o.Watch, cfg.Watch)
	boolean("vsync", o.VSync, cfg.VSync)
	boolean("translate", o.Translate, cfg.Translate)
	boolean("headless", o.Headless, cfg.Headless)
	if !set["seed"] && cfg.Seed != 0 {
		*o.Seed = cfg.Seed
	}

	// textures merge per name; command line bindings win
	if len(cfg.Textures) > 0 {
		merged := make(map[string]string, len(cfg.Textures))
		for name, path := range cfg.Textures {
			merged[name] = path
		}
		if flagged, err := o.TextureMap(); err == nil {
			for name, path := range flagged {
				merged[name] = path
			}
		}
		names := make([]string, 0, len(merged))
		for name := range merged {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, len(names))
		for i, name := range names {
			pairs[i] = name + "=" + merged[name]
		}
		*o.Textures = strings.Join(pairs, ",")
	}
}

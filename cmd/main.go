package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderlab/capture"
	"github.com/richinsley/goshaderlab/gldevice"
	"github.com/richinsley/goshaderlab/glfwcontext"
	"github.com/richinsley/goshaderlab/headless"
	"github.com/richinsley/goshaderlab/options"
	"github.com/richinsley/goshaderlab/presets"
	"github.com/richinsley/goshaderlab/renderer"
	"github.com/richinsley/goshaderlab/translator"
	"github.com/richinsley/goshaderlab/watch"
)

func init() {
	runtime.LockOSThread()
}

// newTranslator returns the shader translator for the context: desktop
// GLSL for windows, ESSL for EGL.
func newTranslator(opts *options.ShaderOptions, gles bool) translator.Translator {
	if !*opts.Translate {
		return translator.Passthrough{}
	}
	tr, err := translator.New(gles)
	if err != nil {
		log.Printf("Warning: shader translator unavailable, compiling sources as-is: %v", err)
		return translator.Passthrough{}
	}
	return tr
}

func newRand(opts *options.ShaderOptions) *rand.Rand {
	seed := *opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// setupScene loads the shader, its textures and the selected preset.
func setupScene(r *renderer.Renderer, opts *options.ShaderOptions, src string) {
	if err := r.Load(src); err != nil {
		log.Printf("Shader failed to compile:\n%s", r.Diagnostic())
	}

	textures, _ := opts.TextureMap()
	names := make([]string, 0, len(textures))
	for name := range textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.LoadTexture(name, textures[name])
	}

	if *opts.Preset == "" {
		return
	}
	file, err := presets.Load(*opts.PresetsFile)
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	p, ok := file.Lookup(*opts.Preset)
	if !ok {
		log.Printf("Warning: preset %q not found in %s", *opts.Preset, *opts.PresetsFile)
		return
	}
	n := r.ApplyPresetValues(p.Values)
	log.Printf("Applied preset %q (%d values)", p.Name, n)
}

func savePreset(r *renderer.Renderer, path string) {
	file := &presets.File{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := presets.Load(path)
		if err != nil {
			log.Printf("Warning: not overwriting %s: %v", path, err)
			return
		}
		file = loaded
	}
	name := time.Now().Format("snapshot-20060102-150405")
	file.Put(presets.Snapshot(name, r.Store()))
	if err := file.Save(path); err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	log.Printf("Saved preset %q to %s", name, path)
}

func runInteractive(opts *options.ShaderOptions, src string) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	title := "goshaderlab - " + filepath.Base(*opts.ShaderFile)
	ctx, err := glfwcontext.New(glfwcontext.Options{
		Width:   *opts.Width,
		Height:  *opts.Height,
		Title:   title,
		Visible: true,
		VSync:   *opts.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer ctx.Shutdown()

	dev, err := gldevice.New()
	if err != nil {
		return err
	}
	defer dev.Destroy()

	var r *renderer.Renderer
	r, err = renderer.NewRenderer(renderer.Config{
		Device:     dev,
		Context:    ctx,
		Translator: newTranslator(opts, false),
		Rand:       newRand(opts),
		OnStatus: func(fps float64, diagnostic string) {
			switch {
			case diagnostic != "":
				ctx.SetTitle(title + " - compile error")
			case r.Loop().State() == renderer.Paused:
				ctx.SetTitle(title + " - paused")
			default:
				ctx.SetTitle(fmt.Sprintf("%s - %.0f fps", title, fps))
			}
		},
	})
	if err != nil {
		return err
	}
	defer r.Shutdown()

	setupScene(r, opts, src)

	ctx.RegisterKeyCallback(glfw.KeySpace, r.TogglePause)
	ctx.RegisterKeyCallback(glfw.KeyR, r.Reset)
	ctx.RegisterKeyCallback(glfw.KeyN, r.Randomize)
	ctx.RegisterKeyCallback(glfw.KeyS, func() {
		img, err := r.Capture()
		if err != nil {
			log.Printf("Warning: %v", err)
			return
		}
		path := time.Now().Format("screenshot-20060102-150405.png")
		if err := capture.Save(path, img); err != nil {
			log.Printf("Warning: %v", err)
			return
		}
		log.Printf("Saved %s", path)
	})
	if *opts.PresetsFile != "" {
		ctx.RegisterKeyCallback(glfw.KeyP, func() { savePreset(r, *opts.PresetsFile) })
	}

	if *opts.Watch {
		watchCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		err := watch.File(watchCtx, *opts.ShaderFile, func(src string) {
			log.Printf("Reloading %s", *opts.ShaderFile)
			r.SubmitSource(src)
		})
		if err != nil {
			log.Printf("Warning: not watching %s: %v", *opts.ShaderFile, err)
		}
	}

	log.Println("Starting interactive render loop...")
	return r.Run()
}

// newOffscreenContext creates a GL context nobody sees: an EGL pbuffer with
// -headless, a hidden window otherwise.
func newOffscreenContext(opts *options.ShaderOptions) (shutdown func(), err error) {
	w, h := *opts.Width, *opts.Height
	if *opts.Headless {
		egl, err := headless.New(w, h)
		if err != nil {
			return nil, err
		}
		pw, ph := egl.Size()
		log.Printf("Rendering headless on a %dx%d EGL pbuffer", pw, ph)
		return egl.Shutdown, nil
	}
	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, fmt.Errorf("failed to initialize graphics: %w", err)
	}
	win, err := glfwcontext.New(glfwcontext.Options{Width: w, Height: h})
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	return func() {
		win.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

// newOffscreenRenderer creates a renderer on virtual time drawing into an
// offscreen framebuffer.
func newOffscreenRenderer(opts *options.ShaderOptions) (*renderer.Renderer, func(), error) {
	w, h := *opts.Width, *opts.Height
	shutdown, err := newOffscreenContext(opts)
	if err != nil {
		return nil, nil, err
	}
	dev, err := gldevice.New()
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	fbo, err := gldevice.NewOffscreen(w, h)
	if err != nil {
		dev.Destroy()
		shutdown()
		return nil, nil, err
	}
	fbo.Bind()

	clock := &renderer.VirtualClock{}
	r, err := renderer.NewRenderer(renderer.Config{
		Device:     dev,
		Translator: newTranslator(opts, *opts.Headless),
		Clock:      clock,
		Scheduler:  renderer.NewVirtualScheduler(clock),
		Rand:       newRand(opts),
		Width:      w,
		Height:     h,
	})
	if err != nil {
		fbo.Destroy()
		dev.Destroy()
		shutdown()
		return nil, nil, err
	}
	cleanup := func() {
		r.Shutdown()
		fbo.Unbind()
		fbo.Destroy()
		dev.Destroy()
		shutdown()
	}
	return r, cleanup, nil
}

func runSnapshot(opts *options.ShaderOptions, src string) error {
	r, cleanup, err := newOffscreenRenderer(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	setupScene(r, opts, src)
	r.Loop().Seek(*opts.Time)
	img, err := r.Capture()
	if err != nil {
		return err
	}
	if err := capture.Save(opts.Output(), img); err != nil {
		return err
	}
	log.Printf("Successfully rendered to %s", opts.Output())
	return nil
}

func runRecord(opts *options.ShaderOptions, src string) error {
	r, cleanup, err := newOffscreenRenderer(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	setupScene(r, opts, src)
	if r.Program() == nil {
		return errors.New("nothing to record, the shader did not compile")
	}

	rec, err := capture.NewRecorder(capture.RecorderOptions{
		OutputFile: opts.Output(),
		Width:      *opts.Width,
		Height:     *opts.Height,
		FPS:        *opts.FPS,
		Codec:      *opts.Codec,
		Bitrate:    *opts.Bitrate,
		FFmpegPath: *opts.FFMPEGPath,
	})
	if err != nil {
		return err
	}

	frames := int(math.Round(*opts.Duration * float64(*opts.FPS)))
	log.Printf("Recording %d frames at %d fps...", frames, *opts.FPS)
	r.Loop().Seek(*opts.Time)
	recErr := r.Record(frames, *opts.FPS, rec)
	if err := rec.Close(); err != nil && recErr == nil {
		recErr = err
	}
	if recErr != nil {
		return recErr
	}
	log.Printf("Successfully rendered %d frames to %s", rec.Frames(), opts.Output())
	return nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	opts, err := options.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if *opts.Help {
		return
	}

	src, err := opts.ReadShader()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	switch *opts.Mode {
	case options.ModeSnapshot:
		err = runSnapshot(opts, src)
	case options.ModeRecord:
		err = runRecord(opts, src)
	default:
		err = runInteractive(opts, src)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

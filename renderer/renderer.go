// Package renderer compiles live-edited fragment shaders, keeps their
// uniforms in sync with a parameter store and drives the frame loop.
package renderer

import (
	"fmt"
	"image"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/richinsley/goshaderlab/graphics"
	"github.com/richinsley/goshaderlab/inputs"
	"github.com/richinsley/goshaderlab/params"
	"github.com/richinsley/goshaderlab/shader"
	"github.com/richinsley/goshaderlab/translator"
)

// Config wires a Renderer to its host.
type Config struct {
	Device graphics.Device
	// Context supplies the framebuffer size and pointer. It may be nil, in
	// which case Width and Height are used.
	Context    graphics.Context
	Translator translator.Translator
	Clock      Clock
	Scheduler  Scheduler
	Rand       *rand.Rand
	// Width and Height fix the render size when non-zero.
	Width, Height int
	// OnStatus, when set, is called from Run when the frame rate or the
	// compile diagnostic changes.
	OnStatus func(fps float64, diagnostic string)
}

// Renderer is the engine facade: one shader source, its parameters and the
// loop presenting it. Apart from SubmitSource every method must be called
// on the render thread.
type Renderer struct {
	device   graphics.Device
	context  graphics.Context
	programs *ProgramManager
	uploader *FrameUploader
	store    *params.Store
	loop     *Loop
	sched    Scheduler

	width, height int

	pointerX, pointerY float32
	pressed            bool
	lastW, lastH       int
	onStatus           func(fps float64, diagnostic string)

	mu      sync.Mutex
	pending *string
	source  string
}

func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Device == nil {
		return nil, fmt.Errorf("renderer requires a device")
	}
	if cfg.Context == nil && (cfg.Width <= 0 || cfg.Height <= 0) {
		return nil, fmt.Errorf("renderer requires a context or a fixed size")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewSystemClock()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewHostScheduler()
	}

	r := &Renderer{
		device:   cfg.Device,
		context:  cfg.Context,
		programs: NewProgramManager(cfg.Device, cfg.Translator),
		uploader: NewFrameUploader(cfg.Device),
		store:    params.NewStore(cfg.Rand),
		sched:    cfg.Scheduler,
		width:    cfg.Width,
		height:   cfg.Height,
		pointerX: 0.5,
		pointerY: 0.5,
		onStatus: cfg.OnStatus,
	}
	r.loop = NewLoop(cfg.Clock, cfg.Scheduler, r.draw)
	return r, nil
}

// Load parses and compiles src and installs it. The schema and stored
// values always follow src; the program only changes when src compiles.
// The returned error is a *graphics.CompileError or *graphics.LinkError.
func (r *Renderer) Load(src string) error {
	r.source = src
	r.store.SetSchema(shader.Parse(src))
	_, err := r.programs.Compile(src)
	if err != nil {
		log.Printf("Warning: keeping previous program: %v", err)
	}
	r.loop.Invalidate()
	return err
}

// SubmitSource queues src for the next Poll. It may be called from any
// goroutine; only the latest submission is kept.
func (r *Renderer) SubmitSource(src string) {
	r.mu.Lock()
	r.pending = &src
	r.mu.Unlock()
}

// Poll applies a submitted source between frames. It reports whether a
// source was applied.
func (r *Renderer) Poll() bool {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if pending == nil || *pending == r.source {
		return false
	}
	r.Load(*pending)
	return true
}

// Source returns the last loaded source.
func (r *Renderer) Source() string {
	return r.source
}

// Size returns the render size in device pixels.
func (r *Renderer) Size() (int, int) {
	if r.width > 0 && r.height > 0 {
		return r.width, r.height
	}
	return r.context.GetFramebufferSize()
}

// SetPointer overrides the pointer for hosts without a context.
func (r *Renderer) SetPointer(x, y float32, pressed bool) {
	r.pointerX, r.pointerY, r.pressed = x, y, pressed
	r.loop.Invalidate()
}

func (r *Renderer) builtins(elapsed float64) Builtins {
	w, h := r.Size()
	b := Builtins{
		Time:     elapsed,
		Width:    w,
		Height:   h,
		PointerX: r.pointerX,
		PointerY: r.pointerY,
		Pressed:  r.pressed,
	}
	if r.context != nil {
		b.PointerX, b.PointerY, b.Pressed = r.context.GetPointer()
	}
	return b
}

func (r *Renderer) draw(elapsed float64) {
	r.uploader.Upload(r.programs.Active(), r.store, r.builtins(elapsed))
}

// RenderFrame draws the active program at the current elapsed time.
func (r *Renderer) RenderFrame() {
	r.draw(r.loop.Elapsed())
}

// Capture renders the current frame again and reads it back, so the result
// never depends on whether the surface was already presented.
func (r *Renderer) Capture() (*image.RGBA, error) {
	if r.programs.Active() == nil {
		return nil, fmt.Errorf("no program to capture")
	}
	r.RenderFrame()
	w, h := r.Size()
	img, err := r.device.ReadPixels(w, h)
	if err != nil {
		return nil, fmt.Errorf("failed to read back frame: %w", err)
	}
	return img, nil
}

// SetParam stores a value and redraws a paused loop.
func (r *Renderer) SetParam(name string, v shader.Value) error {
	if err := r.store.Set(name, v); err != nil {
		return err
	}
	r.loop.Invalidate()
	return nil
}

// SetTexture binds img to a texture uniform.
func (r *Renderer) SetTexture(name string, img *inputs.Image) error {
	return r.SetParam(name, shader.Texture(img))
}

// LoadTexture decodes the image at path and binds it to a texture uniform.
// On failure the uniform keeps its previous image.
func (r *Renderer) LoadTexture(name, path string) {
	img, err := inputs.LoadImage(path)
	if err != nil {
		log.Printf("Warning: texture %s keeps its previous image: %v", name, err)
		return
	}
	if err := r.SetTexture(name, img); err != nil {
		log.Printf("Warning: %v", err)
	}
}

func (r *Renderer) Reset() {
	r.store.Reset()
	r.loop.Invalidate()
}

func (r *Renderer) Randomize() {
	r.store.Randomize()
	r.loop.Invalidate()
}

// ApplyPreset overwrites the values named in preset and returns how many
// were applied.
func (r *Renderer) ApplyPreset(preset map[string]shader.Value) int {
	n := r.store.ApplyPreset(preset)
	r.loop.Invalidate()
	return n
}

// ApplyPresetValues converts plain decoded values against the current
// schema and applies those that fit.
func (r *Renderer) ApplyPresetValues(raw map[string]any) int {
	values, errs := params.ConvertPreset(r.store.Schema(), raw)
	for _, err := range errs {
		log.Printf("Warning: preset value skipped: %v", err)
	}
	return r.ApplyPreset(values)
}

// Start begins the frame loop.
func (r *Renderer) Start() {
	r.loop.Start()
}

// TogglePause switches between playing and paused.
func (r *Renderer) TogglePause() {
	r.loop.Toggle()
}

// Loop exposes the render loop for play state and timing.
func (r *Renderer) Loop() *Loop {
	return r.loop
}

func (r *Renderer) FPS() float64 {
	return r.loop.FPS()
}

// Diagnostic returns the last compile failure, or "" when the current
// source compiled.
func (r *Renderer) Diagnostic() string {
	return r.programs.Diagnostic()
}

func (r *Renderer) Schema() *shader.Schema {
	return r.store.Schema()
}

func (r *Renderer) Store() *params.Store {
	return r.store
}

// Program returns the active program, or nil.
func (r *Renderer) Program() *CompiledProgram {
	return r.programs.Active()
}

// Uploader exposes the frame uploader for instrumentation.
func (r *Renderer) Uploader() *FrameUploader {
	return r.uploader
}

// Shutdown stops the loop and releases every GPU resource.
func (r *Renderer) Shutdown() {
	r.loop.Stop()
	r.uploader.Release()
	r.programs.Dispose()
}

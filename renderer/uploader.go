package renderer

import (
	"math"

	"github.com/richinsley/goshaderlab/graphics"
	"github.com/richinsley/goshaderlab/params"
	"github.com/richinsley/goshaderlab/shader"
)

// Builtins are the engine-supplied uniform values of one frame.
type Builtins struct {
	Time float64
	// Width and Height are the render target size in device pixels.
	Width, Height int
	// PointerX and PointerY are normalized to [0,1] with y up.
	PointerX, PointerY float32
	Pressed            bool
}

// TextureResource is the GPU texture backing one sampler2D uniform.
type TextureResource struct {
	Uniform string
	Handle  uint32
	// LastImage is the ID of the image whose pixels are in Handle.
	LastImage uint64
	Width     int
	Height    int
}

// FrameUploader pushes built-ins and stored values into the active program
// and draws. Textures are owned here and live until the program they were
// bound to is replaced.
type FrameUploader struct {
	device   graphics.Device
	textures map[string]*TextureResource
	program  uint64
	uploads  map[string]int
}

func NewFrameUploader(device graphics.Device) *FrameUploader {
	return &FrameUploader{
		device:   device,
		textures: make(map[string]*TextureResource),
		uploads:  make(map[string]int),
	}
}

// UploadCount returns how many times pixel content was sent to the GPU for
// the texture uniform name.
func (u *FrameUploader) UploadCount(name string) int {
	return u.uploads[name]
}

// Texture returns the resource bound to a texture uniform, if any.
func (u *FrameUploader) Texture(name string) (*TextureResource, bool) {
	t, ok := u.textures[name]
	return t, ok
}

// Upload renders one frame of prog with the values in store. Uniforms come
// from the schema prog was compiled from, so a store that already follows
// a newer, broken source never sends mismatched types. A nil prog draws
// nothing.
func (u *FrameUploader) Upload(prog *CompiledProgram, store *params.Store, b Builtins) {
	if prog == nil {
		return
	}
	if prog.ID != u.program {
		u.Release()
		u.program = prog.ID
	}

	d := u.device
	d.Viewport(b.Width, b.Height)
	d.Clear()
	d.UseProgram(prog.Handle)

	if loc := prog.Location(shader.UniformTime); loc >= 0 {
		d.Uniform1f(loc, float32(b.Time))
	}
	if loc := prog.Location(shader.UniformResolution); loc >= 0 {
		d.Uniform2f(loc, float32(b.Width), float32(b.Height))
	}
	if loc := prog.Location(shader.UniformPointer); loc >= 0 {
		d.Uniform2f(loc, b.PointerX, b.PointerY)
	}
	if loc := prog.Location(shader.UniformPointerPressed); loc >= 0 {
		d.Uniform1f(loc, boolFloat(b.Pressed))
	}

	unit := 0
	for _, spec := range prog.Schema.Specs() {
		name := spec.Name
		v := programValue(store, spec)
		if spec.Kind == shader.KindTexture {
			if u.uploadTexture(prog, name, v, unit) {
				unit++
			}
			continue
		}
		loc := prog.Location(name)
		if loc < 0 {
			continue
		}
		switch spec.Kind {
		case shader.KindScalar:
			if spec.Integer {
				d.Uniform1i(loc, int32(math.Round(v.Num[0])))
			} else {
				d.Uniform1f(loc, float32(v.Num[0]))
			}
		case shader.KindBool:
			d.Uniform1f(loc, boolFloat(v.Bool))
		case shader.KindVec2:
			d.Uniform2f(loc, float32(v.Num[0]), float32(v.Num[1]))
		case shader.KindVec3:
			d.Uniform3f(loc, float32(v.Num[0]), float32(v.Num[1]), float32(v.Num[2]))
		case shader.KindVec4:
			d.Uniform4f(loc, float32(v.Num[0]), float32(v.Num[1]), float32(v.Num[2]), float32(v.Num[3]))
		}
	}

	d.DrawQuad(prog.Attrib)

	for i := 0; i < unit; i++ {
		d.BindTexture(i, 0)
	}
}

// programValue returns the value to upload for spec, a uniform of the
// active program. The store may already track a newer source whose
// declaration of the same name differs; such values are not uploaded and
// the program's own default is used instead.
func programValue(store *params.Store, spec shader.UniformSpec) shader.Value {
	cur, ok := store.Schema().Lookup(spec.Name)
	if !ok || cur.Kind != spec.Kind || cur.Integer != spec.Integer {
		return spec.Default
	}
	if v, ok := store.Get(spec.Name); ok && v.Kind == spec.Kind {
		return v
	}
	return spec.Default
}

// uploadTexture binds the texture for name to unit and reports whether the
// unit was used.
func (u *FrameUploader) uploadTexture(prog *CompiledProgram, name string, v shader.Value, unit int) bool {
	d := u.device
	img := v.Texture

	if loc := prog.Location(shader.CompanionName(name)); loc >= 0 {
		d.Uniform2f(loc, float32(img.Width()), float32(img.Height()))
	}

	loc := prog.Location(name)
	if loc < 0 || img == nil || img.Pixels == nil {
		return false
	}

	res, ok := u.textures[name]
	if !ok {
		res = &TextureResource{Uniform: name, Handle: d.CreateTexture()}
		u.textures[name] = res
	}
	if res.LastImage != img.ID {
		d.UploadTexture(res.Handle, img.Pixels)
		res.LastImage = img.ID
		res.Width = img.Width()
		res.Height = img.Height()
		u.uploads[name]++
	}

	d.BindTexture(unit, res.Handle)
	d.Uniform1i(loc, int32(unit))
	return true
}

// Release deletes every texture the uploader owns.
func (u *FrameUploader) Release() {
	for name, res := range u.textures {
		u.device.DeleteTexture(res.Handle)
		delete(u.textures, name)
	}
	u.program = 0
}

func boolFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

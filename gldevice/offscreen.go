package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Offscreen is a fixed-size RGBA8 framebuffer used for snapshot and record
// modes, where the window is hidden and its size is not authoritative.
type Offscreen struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

// NewOffscreen allocates the framebuffer. It is left unbound.
func NewOffscreen(width, height int) (*Offscreen, error) {
	o := &Offscreen{width: width, height: height}

	gl.GenFramebuffers(1, &o.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
	gl.GenTextures(1, &o.textureID)
	gl.BindTexture(gl.TEXTURE_2D, o.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, o.textureID, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		o.Destroy()
		return nil, fmt.Errorf("offscreen fbo is not complete")
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return o, nil
}

// Bind directs draws and reads to the offscreen framebuffer.
func (o *Offscreen) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
}

// Unbind restores the default framebuffer.
func (o *Offscreen) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Size returns the framebuffer size in pixels.
func (o *Offscreen) Size() (int, int) {
	return o.width, o.height
}

func (o *Offscreen) Destroy() {
	gl.DeleteFramebuffers(1, &o.fbo)
	gl.DeleteTextures(1, &o.textureID)
}

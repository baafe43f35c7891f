//go:build !linux

package headless

import "errors"

// ErrUnsupported is returned by New where EGL pbuffers are unavailable.
var ErrUnsupported = errors.New("headless rendering needs EGL, which is only wired on linux")

// Context is unavailable off linux.
type Context struct{}

func New(width, height int) (*Context, error) {
	return nil, ErrUnsupported
}

func (h *Context) Size() (int, int) { return 0, 0 }

func (h *Context) Shutdown() {}

//go:build linux

// Package headless renders without a window: an OpenGL ES 3 context on an
// EGL pbuffer, for snapshots and recordings on machines with no display
// server.
package headless

import (
	"fmt"
	"log"
)

/*
#cgo LDFLAGS: -lEGL -lGLESv2
#include <EGL/egl.h>
#include <EGL/eglext.h>

#define GSL_MAX_DEVICES 16

// Device enumeration is an extension; its entry points are resolved at
// runtime and may be missing.
static EGLint gsl_device_count(EGLDeviceEXT *devices) {
	PFNEGLQUERYDEVICESEXTPROC query =
		(PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
	EGLint n = 0;
	if (!query || !query(GSL_MAX_DEVICES, devices, &n)) {
		return 0;
	}
	return n;
}

// gsl_open_display returns a display on the first usable GPU device,
// or the default display when devices cannot be enumerated. *device is
// the index used, -1 for the default display.
static EGLDisplay gsl_open_display(int *device) {
	EGLDeviceEXT devices[GSL_MAX_DEVICES];
	EGLint n = gsl_device_count(devices);
	PFNEGLGETPLATFORMDISPLAYEXTPROC platformDisplay =
		(PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
	if (platformDisplay) {
		for (EGLint i = 0; i < n; i++) {
			EGLDisplay d = platformDisplay(EGL_PLATFORM_DEVICE_EXT, devices[i], NULL);
			if (d != EGL_NO_DISPLAY) {
				*device = i;
				return d;
			}
		}
	}
	*device = -1;
	return eglGetDisplay(EGL_DEFAULT_DISPLAY);
}
*/
import "C"

// Context is an OpenGL ES 3 context on a pbuffer surface. Shaders run on
// it must be translated to ESSL.
type Context struct {
	display C.EGLDisplay
	context C.EGLContext
	surface C.EGLSurface
}

func eglError(what string) error {
	return fmt.Errorf("%s failed: EGL error 0x%x", what, int(C.eglGetError()))
}

// New creates a context with a width x height pbuffer and makes it current
// on the calling thread.
func New(width, height int) (*Context, error) {
	var device C.int
	h := &Context{display: C.gsl_open_display(&device)}
	if h.display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
		return nil, fmt.Errorf("no EGL display available")
	}

	var major, minor C.EGLint
	if C.eglInitialize(h.display, &major, &minor) == C.EGL_FALSE {
		return nil, eglError("eglInitialize")
	}
	if device >= 0 {
		log.Printf("EGL %d.%d on device %d", major, minor, device)
	} else {
		log.Printf("EGL %d.%d on the default display", major, minor)
	}

	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		h.Shutdown()
		return nil, eglError("eglBindAPI")
	}

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES3_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var count C.EGLint
	if C.eglChooseConfig(h.display, &configAttribs[0], &config, 1, &count) == C.EGL_FALSE || count == 0 {
		h.Shutdown()
		return nil, fmt.Errorf("no RGBA8 ES3 pbuffer config")
	}

	surfaceAttribs := []C.EGLint{C.EGL_WIDTH, C.EGLint(width), C.EGL_HEIGHT, C.EGLint(height), C.EGL_NONE}
	h.surface = C.eglCreatePbufferSurface(h.display, config, &surfaceAttribs[0])
	if h.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		h.Shutdown()
		return nil, eglError("eglCreatePbufferSurface")
	}

	contextAttribs := []C.EGLint{C.EGL_CONTEXT_CLIENT_VERSION, 3, C.EGL_NONE}
	h.context = C.eglCreateContext(h.display, config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if h.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		h.Shutdown()
		return nil, eglError("eglCreateContext")
	}

	if C.eglMakeCurrent(h.display, h.surface, h.surface, h.context) == C.EGL_FALSE {
		h.Shutdown()
		return nil, eglError("eglMakeCurrent")
	}
	return h, nil
}

// Size returns the pbuffer size.
func (h *Context) Size() (int, int) {
	var w, ht C.EGLint
	C.eglQuerySurface(h.display, h.surface, C.EGL_WIDTH, &w)
	C.eglQuerySurface(h.display, h.surface, C.EGL_HEIGHT, &ht)
	return int(w), int(ht)
}

// Shutdown releases the context, its surface and the display. It is safe
// to call more than once.
func (h *Context) Shutdown() {
	if h.display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
		return
	}
	C.eglMakeCurrent(h.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
	if h.context != C.EGLContext(C.EGL_NO_CONTEXT) {
		C.eglDestroyContext(h.display, h.context)
	}
	if h.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
		C.eglDestroySurface(h.display, h.surface)
	}
	C.eglTerminate(h.display)
	h.display = C.EGLDisplay(C.EGL_NO_DISPLAY)
}

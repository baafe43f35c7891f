// Package translator converts GLSL ES 3.00 sources into the dialect of the
// local driver and reports how uniform names were mapped on the way.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

// Translation is a translated shader stage.
type Translation struct {
	Code string
	// Names maps source uniform and attribute names to the names in Code.
	Names map[string]string
}

// MappedName returns the translated name of a source identifier. Names the
// translator did not report map to themselves.
func (t *Translation) MappedName(name string) string {
	if t == nil || t.Names == nil {
		return name
	}
	if m, ok := t.Names[name]; ok && m != "" {
		return m
	}
	return name
}

// Translator turns one shader stage ("vertex" or "fragment") into driver
// source.
type Translator interface {
	Translate(source, stage string) (*Translation, error)
}

var (
	shared    *gst.ShaderTranslator
	sharedErr error
	once      sync.Once
)

// getTranslator lazily starts the shared translator runtime.
func getTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		shared, sharedErr = gst.NewShaderTranslator(context.Background())
	})
	return shared, sharedErr
}

// GST translates WebGL2 sources with goshadertranslator.
type GST struct {
	gles bool
}

// New returns a translator targeting desktop GLSL 4.10, or ESSL when gles
// is set. The translator runtime is started here so a missing runtime is
// reported at startup instead of on the first edit.
func New(gles bool) (*GST, error) {
	if _, err := getTranslator(); err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	return &GST{gles: gles}, nil
}

func (g *GST) Translate(source, stage string) (*Translation, error) {
	t, err := getTranslator()
	if err != nil {
		return nil, err
	}
	outputFormat := gst.OutputFormatGLSL410
	if g.gles {
		outputFormat = gst.OutputFormatESSL
	}
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return &Translation{Code: out.Code, Names: names}, nil
}

// Passthrough returns sources unchanged. It is used with drivers that
// accept GLSL ES 3.00 directly and by tests.
type Passthrough struct{}

func (Passthrough) Translate(source, stage string) (*Translation, error) {
	return &Translation{Code: source}, nil
}

package options

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseDefaults(t *testing.T) {
	opts, err := Parse("test", []string{"plasma.frag"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "plasma.frag", *opts.ShaderFile)
	assert.Equal(t, ModeInteractive, *opts.Mode)
	assert.Equal(t, 1280, *opts.Width)
	assert.True(t, *opts.Watch)
	assert.Equal(t, "snapshot.png", opts.Output())
}

func TestParseConfigFlagsOverride(t *testing.T) {
	cfg := writeConfig(t, `
shader = "from-config.frag"
mode = "record"
width = 1920
height = 1080
fps = 30
watch = false

[textures]
u_image = "noise.png"
u_mask = "mask.png"
`)
	opts, err := Parse("test", []string{"-config", cfg, "-width", "640", "-textures", "u_mask=other.png"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "from-config.frag", *opts.ShaderFile)
	assert.Equal(t, ModeRecord, *opts.Mode)
	assert.Equal(t, 640, *opts.Width, "flag wins")
	assert.Equal(t, 1080, *opts.Height)
	assert.Equal(t, 30, *opts.FPS)
	assert.False(t, *opts.Watch)
	assert.Equal(t, "output.mp4", opts.Output())

	textures, err := opts.TextureMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u_image": "noise.png", "u_mask": "other.png"}, textures)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := Parse("test", []string{"-config", writeConfig(t, `colour = "red"`), "a.frag"}, io.Discard)
	assert.Error(t, err, "unknown key")

	_, err = Parse("test", []string{"-config", filepath.Join(t.TempDir(), "missing.toml"), "a.frag"}, io.Discard)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no shader", nil},
		{"bad mode", []string{"-mode", "stream", "a.frag"}},
		{"bad size", []string{"-width", "0", "a.frag"}},
		{"bad duration", []string{"-mode", "record", "-duration", "0", "a.frag"}},
		{"headless window", []string{"-headless", "a.frag"}},
		{"preset without file", []string{"-preset", "calm", "a.frag"}},
		{"bad texture", []string{"-textures", "u_image", "a.frag"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestTextureMap(t *testing.T) {
	opts, err := Parse("test", []string{"-textures", " u_a = a.png, u_b=b.jpg ,", "a.frag"}, io.Discard)
	require.NoError(t, err)
	m, err := opts.TextureMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u_a": "a.png", "u_b": "b.jpg"}, m)
}

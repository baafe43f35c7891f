package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.frag")
	require.NoError(t, os.WriteFile(path, []byte("void main() {}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 8)
	require.NoError(t, File(ctx, path, func(src string) { changes <- src }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("uniform float u_a;"), 0o644))

	select {
	case src := <-changes:
		assert.Equal(t, "uniform float u_a;", src)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestFileMissingDirectory(t *testing.T) {
	err := File(context.Background(), filepath.Join(t.TempDir(), "nope", "a.frag"), func(string) {})
	assert.Error(t, err)
}

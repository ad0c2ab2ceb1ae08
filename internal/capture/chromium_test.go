package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	t.Parallel()

	o, err := Options{URL: "http://127.0.0.1:8080/", OutputPath: "out.png"}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeout, o.Timeout)

	o, err = Options{URL: "u", OutputPath: "o", Width: 800, Height: 600, Timeout: time.Second}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, 800, o.Width)
	assert.Equal(t, 600, o.Height)
	assert.Equal(t, time.Second, o.Timeout)
}

func TestCaptureViewPNGValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.ErrorIs(t, CaptureViewPNG(ctx, Options{OutputPath: "o.png"}), ErrNoURL)
	assert.ErrorIs(t, CaptureViewPNG(ctx, Options{URL: "http://x/"}), ErrNoOutput)
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "view.png")
	require.NoError(t, writeFileAtomic(path, []byte("png")))
	require.NoError(t, writeFileAtomic(path, []byte("png2")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png2", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

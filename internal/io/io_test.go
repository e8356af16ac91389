package ioutils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "start.sh")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o755))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o755))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestCreateIfAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions", "v", "v.jar")

	created, err := CreateIfAbsent(path)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))
	created, err = CreateIfAbsent(path)
	require.NoError(t, err)
	assert.False(t, created)

	got, _ := os.ReadFile(path)
	assert.Equal(t, "keep", string(got))
}

func TestImageService_ProfileIcon(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"wide", 300, 150},
		{"tall", 40, 80},
		{"square small", 16, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			for x := 0; x < tt.width; x++ {
				for y := 0; y < tt.height; y++ {
					src.Set(x, y, color.RGBA{R: 200, A: 255})
				}
			}
			var buf bytes.Buffer
			require.NoError(t, png.Encode(&buf, src))

			uri, err := NewImageService().ProfileIcon(buf.Bytes())
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
			require.NoError(t, err)
			decoded, err := png.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, ProfileIconSize, decoded.Bounds().Dx())
			assert.Equal(t, ProfileIconSize, decoded.Bounds().Dy())
		})
	}
}

func TestImageService_ProfileIconRejectsGarbage(t *testing.T) {
	_, err := NewImageService().ProfileIcon([]byte("not an image"))
	assert.Error(t, err)
}

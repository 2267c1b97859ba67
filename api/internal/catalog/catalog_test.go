package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif", "notes.txt", "e.webp", "noext"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	items, err := Scan(dir)
	require.NoError(t, err)

	var names []string
	for _, it := range items {
		names = append(names, it.Filename)
	}
	assert.ElementsMatch(t, []string{"a.png", "b.JPG", "c.jpeg", "d.gif"}, names)

	for _, it := range items {
		assert.Equal(t, filepath.Join(dir, it.Filename), it.Path)
		if it.Filename == "a.png" {
			assert.Equal(t, "image/png", it.MIME)
		} else {
			assert.Equal(t, "image/jpeg", it.MIME)
		}
		b, err := it.Read()
		require.NoError(t, err)
		assert.Equal(t, it.Filename, string(b))
	}
}

func TestScan_Empty(t *testing.T) {
	items, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("x.PNG"))
	assert.True(t, IsImage("x.Jpeg"))
	assert.False(t, IsImage("x.png.txt"))
	assert.False(t, IsImage(".png.bak"))
}

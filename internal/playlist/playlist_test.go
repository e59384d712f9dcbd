package playlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
}

func TestScan(t *testing.T) {
	t.Run("FiltersByExtension", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"a.mp3",
			"b.flac",
			"sub/c.ogg",
			"cover.jpg",
			"notes.txt",
		)

		set, err := Scan(dir, []string{".mp3", ".flac", ".ogg"}, 1, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, 3, set.Len())
		for i := 0; i < set.Len(); i++ {
			assert.NotContains(t, set.At(i), "cover.jpg")
			assert.NotContains(t, set.At(i), "notes.txt")
		}
	})

	t.Run("ExtensionCaseInsensitive", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "loud.MP3", "soft.Flac")

		set, err := Scan(dir, []string{".mp3", ".flac"}, 1, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())
	})

	t.Run("SeedReproducesOrder", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.mp3", "b.mp3", "c.mp3", "d.mp3", "e.mp3", "f.mp3", "g.mp3", "h.mp3")

		first, err := Scan(dir, []string{".mp3"}, 42, zap.NewNop())
		require.NoError(t, err)
		second, err := Scan(dir, []string{".mp3"}, 42, zap.NewNop())
		require.NoError(t, err)

		for i := 0; i < first.Len(); i++ {
			assert.Equal(t, first.At(i), second.At(i))
		}

		other, err := Scan(dir, []string{".mp3"}, 43, zap.NewNop())
		require.NoError(t, err)
		different := false
		for i := 0; i < first.Len(); i++ {
			if first.At(i) != other.At(i) {
				different = true
				break
			}
		}
		assert.True(t, different, "a different seed should give a different order")
	})

	t.Run("EmptyLibrary", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "readme.txt")

		_, err := Scan(dir, []string{".mp3"}, 1, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("MissingDir", func(t *testing.T) {
		_, err := Scan(filepath.Join(t.TempDir(), "nope"), []string{".mp3"}, 1, zap.NewNop())
		require.Error(t, err)
	})
}

func TestIndexFor(t *testing.T) {
	set := FromFiles([]string{"a", "b", "c", "d", "e"})

	tests := []struct {
		w    float64
		want int
	}{
		{0.0, 0},
		{0.2, 0},   // floor(0.2 × 4) = 0
		{0.5, 2},   // floor(0.5 × 4) = 2
		{0.75, 3},  // floor(0.75 × 4) = 3
		{1.0, 4},   // last element, never count
		{1.5, 4},   // clamped
		{-0.5, 0},  // clamped
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, set.IndexFor(tt.w), "IndexFor(%v)", tt.w)
	}
}

func TestIndexForSingleFile(t *testing.T) {
	set := FromFiles([]string{"only"})
	assert.Equal(t, 0, set.IndexFor(0.0))
	assert.Equal(t, 0, set.IndexFor(0.5))
	assert.Equal(t, 0, set.IndexFor(1.0))
}

func TestFromFilesCopies(t *testing.T) {
	files := []string{"a", "b"}
	set := FromFiles(files)
	files[0] = "mutated"
	assert.Equal(t, "a", set.At(0), "FileSet must be immune to caller mutation")
}

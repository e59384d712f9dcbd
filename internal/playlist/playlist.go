// Package playlist produces the immutable, pre-shuffled set of audio
// files the conductor drifts through. The set is built once at startup;
// the running daemon never rescans.
package playlist

import (
	"fmt"
	"io/fs"
	"math"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileSet is an ordered sequence of file paths. The order is randomized
// once at construction and stable thereafter; the set is never mutated.
type FileSet struct {
	files []string
}

// Scan walks dir for files with one of the given extensions and returns
// them in a shuffled order. A non-zero seed makes the order reproducible.
func Scan(dir string, extensions []string, seed int64, logger *zap.Logger) (*FileSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if wanted[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan library %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no audio files found under %s", dir)
	}

	// Walk order is filesystem-dependent; sort before shuffling so a
	// fixed seed yields the same order on every host.
	sort.Strings(files)

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(files), func(i, j int) {
		files[i], files[j] = files[j], files[i]
	})

	logger.Info("Library scanned",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int64("seed", seed))

	return &FileSet{files: files}, nil
}

// FromFiles builds a FileSet from an already-ordered list. Used by tests
// and by callers that enumerate files elsewhere.
func FromFiles(files []string) *FileSet {
	return &FileSet{files: append([]string(nil), files...)}
}

// Len returns the number of files in the set.
func (s *FileSet) Len() int {
	return len(s.files)
}

// At returns the file at index i.
func (s *FileSet) At(i int) string {
	return s.files[i]
}

// IndexFor maps a normalized weight in [0,1] to a file index:
// floor(w × (len−1)), clamped so the result never exceeds len−1 and
// never goes below 0.
func (s *FileSet) IndexFor(w float64) int {
	idx := int(math.Floor(w * float64(len(s.files)-1)))
	if idx < 0 {
		return 0
	}
	if idx > len(s.files)-1 {
		return len(s.files) - 1
	}
	return idx
}

// Package workspace owns the scratch directory of a single render run.
//
// Every intermediate artifact (normalized images, per-image clips, chunk
// segments, concat lists, the assembled video before it is moved into place)
// gets a path derived from its image or chunk index, so concurrent chunk
// workers never collide and no locking is needed. Release removes the whole
// tree exactly once, whatever path the run exits by.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrReleased is returned when a released workspace is asked for a directory.
var ErrReleased = errors.New("workspace already released")

const (
	dirNormalized = "normalized"
	dirChunks     = "chunks"
	dirSegments   = "segments"
	dirFinal      = "final"
)

// Workspace is a scoped temporary directory tree. The zero value is not
// usable; create one with New.
type Workspace struct {
	root string

	mu       sync.Mutex
	released bool
}

// New creates a fresh workspace under parent ("" means the OS temp dir).
func New(parent string) (*Workspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("create temp parent: %w", err)
		}
	}
	root, err := os.MkdirTemp(parent, "photoreel-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	for _, d := range []string{dirNormalized, dirChunks, dirSegments, dirFinal} {
		if err := os.Mkdir(filepath.Join(root, d), 0o755); err != nil {
			_ = os.RemoveAll(root)
			return nil, fmt.Errorf("create workspace: %w", err)
		}
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// NormalizedPath is where the rotated copy of image idx is written.
func (w *Workspace) NormalizedPath(idx int, ext string) string {
	return filepath.Join(w.root, dirNormalized, fmt.Sprintf("img-%05d%s", idx, ext))
}

// PrepareChunk creates the private directory for chunk's sub-clips.
func (w *Workspace) PrepareChunk(chunk int) error {
	w.mu.Lock()
	released := w.released
	w.mu.Unlock()
	if released {
		return ErrReleased
	}
	return os.MkdirAll(w.chunkDir(chunk), 0o755)
}

// ClipPath is the sub-clip for the image at position pos of chunk.
func (w *Workspace) ClipPath(chunk, pos int) string {
	return filepath.Join(w.chunkDir(chunk), fmt.Sprintf("clip-%04d.mp4", pos))
}

// ChunkListPath is the concat list used to join chunk's sub-clips.
func (w *Workspace) ChunkListPath(chunk int) string {
	return filepath.Join(w.chunkDir(chunk), "concat.txt")
}

// SegmentPath is the rendered segment for chunk.
func (w *Workspace) SegmentPath(chunk int) string {
	return filepath.Join(w.root, dirSegments, fmt.Sprintf("segment-%04d.mp4", chunk))
}

// FinalListPath is the concat list used to join all segments.
func (w *Workspace) FinalListPath() string {
	return filepath.Join(w.root, dirFinal, "concat.txt")
}

// FinalPath is where the assembled video is written before it is moved to
// the requested output path. ext includes the dot.
func (w *Workspace) FinalPath(ext string) string {
	if ext == "" {
		ext = ".mp4"
	}
	return filepath.Join(w.root, dirFinal, "output"+ext)
}

// DiscardChunk removes chunk's sub-clips once its segment exists (or the
// chunk has failed).
func (w *Workspace) DiscardChunk(chunk int) error {
	return os.RemoveAll(w.chunkDir(chunk))
}

// Release removes the workspace. Safe to call more than once and from any
// exit path; only the first call touches the filesystem.
func (w *Workspace) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return nil
	}
	w.released = true
	return os.RemoveAll(w.root)
}

func (w *Workspace) chunkDir(chunk int) string {
	return filepath.Join(w.root, dirChunks, fmt.Sprintf("chunk-%04d", chunk))
}

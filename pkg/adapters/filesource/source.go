// Package filesource reads still frames from files.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/user/framecast/pkg/ports"
)

// ErrNoFiles is returned when a pattern or manifest names no frames.
var ErrNoFiles = errors.New("no frame files")

// Manifest lists frames with individual durations.
//
//	default_duration_ms: 100
//	frames:
//	  - file: intro.webp
//	    duration_ms: 1500
//	  - file: step-1.webp
type Manifest struct {
	DefaultDurationMs float64         `yaml:"default_duration_ms"`
	Frames            []ManifestEntry `yaml:"frames"`
}

// ManifestEntry is one frame in a Manifest. A zero duration uses the
// manifest default.
type ManifestEntry struct {
	File       string  `yaml:"file"`
	DurationMs float64 `yaml:"duration_ms"`
}

type entry struct {
	path       string
	durationMs float64
}

// Source implements ports.FrameSource over a fixed list of files.
// Files are read when their unit runs.
type Source struct {
	fs      ports.FileSystem
	entries []entry
}

// FromFiles creates a source that shows every file for durationMs.
func FromFiles(fs ports.FileSystem, paths []string, durationMs float64) *Source {
	entries := make([]entry, len(paths))
	for i, p := range paths {
		entries[i] = entry{path: p, durationMs: durationMs}
	}
	return &Source{fs: fs, entries: entries}
}

// FromGlob creates a source from the files matching pattern in lexical order.
func FromGlob(fs ports.FileSystem, pattern string, durationMs float64) (*Source, error) {
	paths, err := fs.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}
	return FromFiles(fs, paths, durationMs), nil
}

// FromManifest creates a source from a YAML manifest. Relative file paths
// are resolved against the manifest's directory.
func FromManifest(fs ports.FileSystem, path string) (*Source, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, path)
	}

	base := filepath.Dir(path)
	entries := make([]entry, len(m.Frames))
	for i, f := range m.Frames {
		if f.File == "" {
			return nil, fmt.Errorf("manifest %s: frame %d has no file", path, i)
		}
		p := f.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		d := f.DurationMs
		if d == 0 {
			d = m.DefaultDurationMs
		}
		entries[i] = entry{path: p, durationMs: d}
	}
	return &Source{fs: fs, entries: entries}, nil
}

// DurationFromFPS converts a frame rate to a per-frame duration.
func DurationFromFPS(fps float64) (float64, error) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0, fmt.Errorf("invalid frame rate %v", fps)
	}
	return 1000 / fps, nil
}

// Units returns one unit per file.
func (s *Source) Units(ctx context.Context) iter.Seq[ports.FrameUnit] {
	return func(yield func(ports.FrameUnit) bool) {
		for _, e := range s.entries {
			unit := func(ctx context.Context) (ports.StillFrame, error) {
				if err := ctx.Err(); err != nil {
					return ports.StillFrame{}, err
				}
				data, err := s.fs.ReadFile(e.path)
				if err != nil {
					return ports.StillFrame{}, fmt.Errorf("read %s: %w", e.path, err)
				}
				return ports.StillFrame{Data: data, DurationMs: e.durationMs}, nil
			}
			if !yield(unit) {
				return
			}
		}
	}
}

// Len returns the number of frames.
func (s *Source) Len() int {
	return len(s.entries)
}

// Paths returns the frame paths in display order.
func (s *Source) Paths() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.path
	}
	return out
}

var _ ports.FrameSource = (*Source)(nil)

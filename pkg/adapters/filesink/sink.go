// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/framecast/pkg/ports"
)

// Sink saves debug output under a base directory:
//
//	stills/frame-0000.webp
//	bitstreams/frame-0000.vp8
//	layout.json
//	poster.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new file sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveStill saves a source still image as received.
func (s *Sink) SaveStill(index int, data []byte) error {
	return s.saveIndexed("stills", index, "webp", data)
}

// SaveBitstream saves an extracted VP8 keyframe.
func (s *Sink) SaveBitstream(index int, data []byte) error {
	return s.saveIndexed("bitstreams", index, "vp8", data)
}

func (s *Sink) saveIndexed(subdir string, index int, ext string, data []byte) error {
	dir := filepath.Join(s.baseDir, subdir)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%04d.%s", index, ext)), data)
}

// SaveLayoutJSON saves the container layout as JSON.
func (s *Sink) SaveLayoutJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "layout.json"), data)
}

// SavePoster saves the generated poster image as PNG.
func (s *Sink) SavePoster(img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode poster: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "poster.png"), data)
}

var _ ports.DebugSink = (*Sink)(nil)

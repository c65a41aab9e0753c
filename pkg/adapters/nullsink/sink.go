// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/framecast/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new null sink.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) Enabled() bool                              { return false }
func (s *Sink) SaveStill(index int, data []byte) error     { return nil }
func (s *Sink) SaveBitstream(index int, data []byte) error { return nil }
func (s *Sink) SaveLayoutJSON(data []byte) error           { return nil }
func (s *Sink) SavePoster(img image.Image) error           { return nil }

var _ ports.DebugSink = (*Sink)(nil)

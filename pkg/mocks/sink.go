package mocks

import (
	"image"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Stills     map[int][]byte
	Bitstreams map[int][]byte
	LayoutJSON []byte
	Poster     image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:    enabled,
		Stills:     make(map[int][]byte),
		Bitstreams: make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveStill(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stills[index] = data
	return nil
}

func (m *DebugSink) SaveBitstream(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bitstreams[index] = data
	return nil
}

func (m *DebugSink) SaveLayoutJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayoutJSON = data
	return nil
}

func (m *DebugSink) SavePoster(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Poster = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

package mocks

import (
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	mu sync.Mutex

	BeginFunc       func(opts ports.EncoderOptions) error
	EncodeFrameFunc func(frame ports.KeyFrame) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled bool
	Options     ports.EncoderOptions
	Frames      []ports.KeyFrame
	EndCalled   bool
}

func (m *VideoEncoder) Begin(opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.BeginCalled = true
	m.Options = opts
	m.Frames = nil
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(frame ports.KeyFrame) error {
	if m.EncodeFrameFunc != nil {
		if err := m.EncodeFrameFunc(frame); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, frame)
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	return []byte{0x1A, 0x45, 0xDF, 0xA3}, nil
}

func (m *VideoEncoder) Stats() ports.EncoderStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := ports.EncoderStats{Frames: len(m.Frames)}
	for i, f := range m.Frames {
		if i == 0 {
			stats.Width, stats.Height = f.Width, f.Height
		}
		stats.DurationMs += f.DurationMs
	}
	if m.EndCalled {
		stats.Layout = &ports.ContainerLayout{}
	}
	return stats
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

// StillImageDecoder is a mock implementation of ports.StillImageDecoder.
type StillImageDecoder struct {
	DecodeStillFunc func(data []byte) (ports.StillImage, error)
}

func (m *StillImageDecoder) DecodeStill(data []byte) (ports.StillImage, error) {
	if m.DecodeStillFunc != nil {
		return m.DecodeStillFunc(data)
	}
	return ports.StillImage{Width: 16, Height: 16, Bitstream: data}, nil
}

var _ ports.StillImageDecoder = (*StillImageDecoder)(nil)

// Package webmencoder provides a keyframe-only WebM encoder.
package webmencoder

import (
	"fmt"
	"sync"

	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/webm"
)

// Encoder implements ports.VideoEncoder on top of webm.Muxer.
type Encoder struct {
	mu sync.Mutex

	muxer  *webm.Muxer
	width  int
	height int
	layout *ports.ContainerLayout
}

// New creates a new WebM encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin initializes the encoder. Calling Begin again discards any frames
// added since the previous Begin.
func (e *Encoder) Begin(opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	mo := webm.DefaultOptions()
	if opts.ClusterMaxDurationMs > 0 {
		mo.ClusterMaxDurationMs = opts.ClusterMaxDurationMs
	}
	if opts.MuxingApp != "" {
		mo.MuxingApp = opts.MuxingApp
	}
	if opts.WritingApp != "" {
		mo.WritingApp = opts.WritingApp
	}

	e.muxer = webm.New(mo)
	e.width = 0
	e.height = 0
	e.layout = nil
	return nil
}

// EncodeFrame appends a keyframe.
func (e *Encoder) EncodeFrame(frame ports.KeyFrame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.muxer == nil {
		return fmt.Errorf("encoder not initialized")
	}

	err := e.muxer.Add(webm.Frame{
		Width:      frame.Width,
		Height:     frame.Height,
		DurationMs: frame.DurationMs,
		Bitstream:  frame.Bitstream,
	})
	if err != nil {
		return err
	}

	if e.muxer.Frames() == 1 {
		e.width = frame.Width
		e.height = frame.Height
	}
	return nil
}

// End finalizes encoding and returns the WebM data.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.muxer == nil {
		return nil, fmt.Errorf("encoder not initialized")
	}

	data, err := e.muxer.Finalize()
	if err != nil {
		return nil, err
	}

	e.layout = convertLayout(e.muxer.Layout())
	return data, nil
}

// Stats reports what has been written so far.
func (e *Encoder) Stats() ports.EncoderStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.muxer == nil {
		return ports.EncoderStats{}
	}
	return ports.EncoderStats{
		Frames:     e.muxer.Frames(),
		DurationMs: e.muxer.DurationMs(),
		Width:      e.width,
		Height:     e.height,
		Layout:     e.layout,
	}
}

func convertLayout(l webm.Layout) *ports.ContainerLayout {
	out := &ports.ContainerLayout{
		SegmentDataOffset: l.SegmentDataOffset,
		InfoSize:          l.InfoSize,
		TracksSize:        l.TracksSize,
		CuesSize:          l.CuesSize,
		TotalSize:         l.TotalSize,
		Clusters:          make([]ports.ClusterLayout, len(l.Clusters)),
	}
	for i, c := range l.Clusters {
		out.Clusters[i] = ports.ClusterLayout{
			TimecodeMs: c.TimecodeMs,
			DurationMs: c.DurationMs,
			Blocks:     c.Blocks,
			Position:   c.Position,
			Size:       c.Size,
		}
	}
	return out
}

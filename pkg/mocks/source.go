package mocks

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/framecast/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource backed by
// in-memory stills.
type FrameSource struct {
	Stills     [][]byte
	DurationMs float64

	// UnitFunc overrides the unit for an index when set.
	UnitFunc func(ctx context.Context, index int) (ports.StillFrame, error)

	pulled atomic.Int32
}

// NewFrameSource creates a source showing every still for durationMs.
func NewFrameSource(stills [][]byte, durationMs float64) *FrameSource {
	return &FrameSource{Stills: stills, DurationMs: durationMs}
}

func (m *FrameSource) Units(ctx context.Context) iter.Seq[ports.FrameUnit] {
	return func(yield func(ports.FrameUnit) bool) {
		for i, still := range m.Stills {
			m.pulled.Add(1)
			unit := func(ctx context.Context) (ports.StillFrame, error) {
				if m.UnitFunc != nil {
					return m.UnitFunc(ctx, i)
				}
				return ports.StillFrame{Data: still, DurationMs: m.DurationMs}, nil
			}
			if !yield(unit) {
				return
			}
		}
	}
}

func (m *FrameSource) Len() int {
	return len(m.Stills)
}

// Pulled returns how many units have been handed out.
func (m *FrameSource) Pulled() int {
	return int(m.pulled.Load())
}

var _ ports.FrameSource = (*FrameSource)(nil)

// Metrics is a mock implementation of ports.Metrics that counts calls.
type Metrics struct {
	Extracted atomic.Int32
	Committed atomic.Int32
	Clusters  atomic.Int32
	Runs      atomic.Int32

	mu      sync.Mutex
	lastErr error
}

func (m *Metrics) FrameExtracted(bytes int, elapsed time.Duration) { m.Extracted.Add(1) }
func (m *Metrics) FrameCommitted(durationMs float64)              { m.Committed.Add(1) }
func (m *Metrics) ClusterWritten(blocks int, bytes int)           { m.Clusters.Add(1) }

func (m *Metrics) RunFinished(outputBytes int, elapsed time.Duration, err error) {
	m.Runs.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

// LastErr returns the error passed to the latest RunFinished.
func (m *Metrics) LastErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

var _ ports.Metrics = (*Metrics)(nil)

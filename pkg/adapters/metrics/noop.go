package metrics

import (
	"time"

	"github.com/user/framecast/pkg/ports"
)

// Noop discards all measurements.
type Noop struct{}

// NewNoop creates a metrics recorder that does nothing.
func NewNoop() *Noop {
	return &Noop{}
}

func (Noop) FrameExtracted(int, time.Duration)      {}
func (Noop) FrameCommitted(float64)                 {}
func (Noop) ClusterWritten(int, int)                {}
func (Noop) RunFinished(int, time.Duration, error) {}

var _ ports.Metrics = (*Noop)(nil)

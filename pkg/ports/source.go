package ports

import (
	"context"
	"iter"
)

// StillFrame is one encoded still image with its display duration.
type StillFrame struct {
	Data       []byte
	DurationMs float64
}

// FrameUnit produces one still frame when called. Units may run concurrently.
type FrameUnit func(ctx context.Context) (StillFrame, error)

// FrameSource yields frame units in display order.
type FrameSource interface {
	// Units returns a lazy sequence of units. The sequence may be consumed once.
	Units(ctx context.Context) iter.Seq[FrameUnit]

	// Len returns the number of units, or -1 when unknown.
	Len() int
}

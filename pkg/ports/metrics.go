package ports

import "time"

// Metrics records pipeline measurements.
type Metrics interface {
	// FrameExtracted records one still image turned into a keyframe.
	FrameExtracted(bytes int, elapsed time.Duration)

	// FrameCommitted records one keyframe accepted by the container writer.
	FrameCommitted(durationMs float64)

	// ClusterWritten records one finished cluster.
	ClusterWritten(blocks int, bytes int)

	// RunFinished records the outcome of a whole run.
	RunFinished(outputBytes int, elapsed time.Duration, err error)
}

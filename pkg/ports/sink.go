package ports

import (
	"image"
)

// DebugSink saves intermediate results for debugging.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveStill saves a source still image as received.
	SaveStill(index int, data []byte) error

	// SaveBitstream saves an extracted VP8 keyframe.
	SaveBitstream(index int, data []byte) error

	// SaveLayoutJSON saves the container layout as JSON.
	SaveLayoutJSON(data []byte) error

	// SavePoster saves the generated poster image.
	SavePoster(img image.Image) error
}

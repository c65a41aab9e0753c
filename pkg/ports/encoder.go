package ports

// KeyFrame is one VP8 keyframe ready to be placed in a container.
type KeyFrame struct {
	Width      int
	Height     int
	DurationMs float64
	Bitstream  []byte // VP8 frame as stored in the still image, frame tag included
}

// VideoEncoder abstracts the container writer for keyframe-only video.
type VideoEncoder interface {
	// Begin resets the encoder and applies the options.
	Begin(opts EncoderOptions) error

	// EncodeFrame appends a keyframe. Frames must arrive in display order.
	EncodeFrame(frame KeyFrame) error

	// End finalizes encoding and returns the container bytes.
	End() ([]byte, error)

	// Stats reports what has been written so far.
	Stats() EncoderStats
}

// EncoderOptions configures the container writer.
type EncoderOptions struct {
	ClusterMaxDurationMs float64 // Zero uses the encoder's default
	MuxingApp            string
	WritingApp           string
}

// EncoderStats summarizes an encoding session.
type EncoderStats struct {
	Frames     int
	DurationMs float64
	Width      int
	Height     int
	Layout     *ContainerLayout // Nil until End succeeds
}

// ContainerLayout describes the byte layout of a finished container.
type ContainerLayout struct {
	SegmentDataOffset int             `json:"segment_data_offset"`
	InfoSize          int             `json:"info_size"`
	TracksSize        int             `json:"tracks_size"`
	CuesSize          int             `json:"cues_size"`
	TotalSize         int             `json:"total_size"`
	Clusters          []ClusterLayout `json:"clusters"`
}

// ClusterLayout describes one cluster of a finished container.
type ClusterLayout struct {
	TimecodeMs uint64  `json:"timecode_ms"`
	DurationMs float64 `json:"duration_ms"`
	Blocks     int     `json:"blocks"`
	Position   uint64  `json:"position"`
	Size       int     `json:"size"`
}

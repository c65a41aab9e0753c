package webm

// Layout describes where the parts of a finalized container ended up.
type Layout struct {
	// SegmentDataOffset is the absolute offset of the first byte of the
	// Segment payload. Cue positions are relative to it.
	SegmentDataOffset int `json:"segment_data_offset"`

	InfoSize   int `json:"info_size"`
	TracksSize int `json:"tracks_size"`
	CuesSize   int `json:"cues_size"`

	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Frames     int     `json:"frames"`
	DurationMs float64 `json:"duration_ms"`
	TotalSize  int     `json:"total_size"`

	Clusters []ClusterLayout `json:"clusters"`
}

// ClusterLayout describes one rendered cluster.
type ClusterLayout struct {
	TimecodeMs uint64  `json:"timecode_ms"`
	DurationMs float64 `json:"duration_ms"`
	Blocks     int     `json:"blocks"`
	Position   uint64  `json:"position"`
	Size       int     `json:"size"`
}

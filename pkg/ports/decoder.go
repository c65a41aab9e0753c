package ports

// StillImage is the keyframe carried by a lossy still image.
type StillImage struct {
	Width     int
	Height    int
	Bitstream []byte
}

// StillImageDecoder extracts keyframes from encoded still images.
type StillImageDecoder interface {
	// DecodeStill returns the keyframe and its dimensions.
	// It does not decode pixels.
	DecodeStill(data []byte) (StillImage, error)
}

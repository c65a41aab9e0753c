package pipeline

import (
	"context"
	"image"
	"image/color"
	"iter"

	"github.com/user/framecast/pkg/ports"
)

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput contains parameters for capturing a page as still frames.
type CaptureInput struct {
	URL        string
	Width      int // Viewport width in CSS pixels
	Height     int // Viewport height in CSS pixels
	Frames     int // Number of screenshots to take
	IntervalMs int // Delay between screenshots, also used as frame duration
	Quality    int // WebP quality 0-100
	TimeoutMs  int
	Headers    map[string]string
}

// DefaultCaptureInput returns CaptureInput with default values.
func DefaultCaptureInput() CaptureInput {
	return CaptureInput{
		Width:      640,
		Height:     480,
		Frames:     30,
		IntervalMs: 200,
		Quality:    80,
		TimeoutMs:  30000,
	}
}

// CaptureResult contains the captured stills.
type CaptureResult struct {
	Frames   []ports.StillFrame
	PageInfo ports.PageInfo
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for turning still frames into a WebM file.
type EncodeInput struct {
	Source               ports.FrameSource
	Concurrency          int     // Units in flight; zero means runtime.NumCPU()
	ClusterMaxDurationMs float64 // Zero means 30000
	MuxingApp            string
	WritingApp           string

	// Progress is called with (committed, total). total is -1 when unknown.
	Progress func(committed, total int)
}

// DefaultEncodeInput returns EncodeInput with default values.
func DefaultEncodeInput() EncodeInput {
	return EncodeInput{
		ClusterMaxDurationMs: 30000,
		MuxingApp:            "framecast",
		WritingApp:           "framecast",
	}
}

// EncodeResult contains the encoded video.
type EncodeResult struct {
	VideoData  []byte
	FrameCount int
	DurationMs float64
	Width      int
	Height     int
	Clusters   int
	FileSize   int64

	// FirstStill is the first source still, kept for the poster.
	FirstStill []byte

	Layout *ports.ContainerLayout
}

// =============================================================================
// Poster Stage Types
// =============================================================================

// PosterInput contains parameters for rendering a poster image.
type PosterInput struct {
	Still      []byte // WebP still to use as the background
	MaxWidth   int    // Zero keeps the still's width
	Caption    string
	FontPath   string
	Theme      PosterTheme
	FrameCount int
	DurationMs float64
}

// PosterTheme defines poster styling.
type PosterTheme struct {
	BarColor  color.Color
	TextColor color.Color
	FontSize  float64
}

// DefaultPosterTheme returns a default poster theme.
func DefaultPosterTheme() PosterTheme {
	return PosterTheme{
		BarColor:  color.RGBA{R: 45, G: 45, B: 45, A: 220},
		TextColor: color.White,
		FontSize:  14,
	}
}

// PosterResult contains the rendered poster.
type PosterResult struct {
	Image image.Image
	PNG   []byte
}

// =============================================================================
// In-memory Frame Source
// =============================================================================

// StillSource serves captured stills as a ports.FrameSource.
type StillSource []ports.StillFrame

// Units yields one unit per still.
func (s StillSource) Units(ctx context.Context) iter.Seq[ports.FrameUnit] {
	return func(yield func(ports.FrameUnit) bool) {
		for _, f := range s {
			if !yield(func(ctx context.Context) (ports.StillFrame, error) {
				return f, ctx.Err()
			}) {
				return
			}
		}
	}
}

// Len returns the number of stills.
func (s StillSource) Len() int {
	return len(s)
}

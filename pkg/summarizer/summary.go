// Package summarizer provides summary generation for encoding runs.
package summarizer

import "time"

// Summary contains all data collected during one run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Elapsed     time.Duration

	// Where the stills came from
	Source SourceInfo

	// Encoding settings
	Settings Settings

	// Video output details
	Video VideoInfo

	// Per-cluster breakdown
	Clusters []ClusterInfo
}

// SourceKind names the kind of frame source.
type SourceKind string

const (
	SourceFiles   SourceKind = "files"
	SourceCapture SourceKind = "capture"
)

// SourceInfo describes the frame source.
type SourceInfo struct {
	Kind     SourceKind
	Location string // directory, manifest path or URL
	Title    string // page title, capture only
	Frames   int
}

// Settings contains the encoding configuration.
type Settings struct {
	Concurrency          int
	ClusterMaxDurationMs float64
	Verify               bool
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	Path       string
	FrameCount int
	DurationMs float64
	Width      int
	Height     int
	FileSize   int64
	PosterPath string
}

// ClusterInfo is one row of the cluster table.
type ClusterInfo struct {
	TimecodeMs uint64
	DurationMs float64
	Blocks     int
	Size       int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets source information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithSettings sets encoding settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// WithClusters sets the cluster breakdown.
func (b *Builder) WithClusters(clusters []ClusterInfo) *Builder {
	b.summary.Clusters = clusters
	return b
}

// WithElapsed sets the wall-clock time of the run.
func (b *Builder) WithElapsed(elapsed time.Duration) *Builder {
	b.summary.Elapsed = elapsed
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

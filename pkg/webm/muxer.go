// Package webm muxes VP8 keyframes into a single-track WebM container.
//
// Frames are grouped into clusters of bounded duration as they arrive. Each
// sealed cluster is rendered to bytes immediately; Finalize renders the
// remaining segment children, resolves the cue positions from the rendered
// sizes and assembles the document:
//
//	EBML header, Segment(Info, Tracks, Cues, Cluster...)
package webm

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"math"

	"github.com/google/uuid"

	"github.com/user/framecast/pkg/ebml"
)

const (
	// ClusterMaxDurationMs is the default cluster duration cap.
	ClusterMaxDurationMs = 30000

	// MaxFrameDurationMs is the largest duration a signed 16-bit relative
	// block timecode can carry.
	MaxFrameDurationMs = 32767

	// TimecodeScale expresses timecodes in milliseconds.
	TimecodeScale = 1000000

	// CodecID is the Matroska codec identifier of the video track.
	CodecID = "V_VP8"

	trackNumber      = 1
	cuePositionWidth = 8
	keyframeFlag     = 0x80
)

var (
	// ErrFrameSizeMismatch is returned when a frame's dimensions differ from the first frame's.
	ErrFrameSizeMismatch = errors.New("frame size mismatch")

	// ErrDurationOutOfRange is returned for negative, NaN or over-long frame durations.
	ErrDurationOutOfRange = errors.New("frame duration out of range")

	// ErrEmptyFrame is returned for a frame without bitstream bytes.
	ErrEmptyFrame = errors.New("empty frame bitstream")

	// ErrNoFrames is returned by Finalize when no frame was added.
	ErrNoFrames = errors.New("no frames to mux")

	errFinalized = errors.New("muxer already finalized")
)

// Frame is one VP8 keyframe with its display duration.
type Frame struct {
	Width      int
	Height     int
	DurationMs float64
	Bitstream  []byte
}

// Options configures a Muxer.
type Options struct {
	MuxingApp  string
	WritingApp string

	// ClusterMaxDurationMs caps the summed block duration of a cluster.
	// Values outside (0, MaxFrameDurationMs] fall back to ClusterMaxDurationMs.
	ClusterMaxDurationMs float64
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		MuxingApp:            "framecast",
		WritingApp:           "framecast",
		ClusterMaxDurationMs: ClusterMaxDurationMs,
	}
}

// Muxer accumulates frames and renders the final container.
// It is not safe for concurrent use.
type Muxer struct {
	opts Options

	width      int
	height     int
	frames     int
	durationMs float64

	open   *openCluster
	sealed []sealedCluster
	digest hash.Hash

	err    error
	done   bool
	layout Layout
}

type openCluster struct {
	startMs    float64
	durationMs float64
	blocks     []ebml.Element
}

type sealedCluster struct {
	timecode   uint64
	durationMs float64
	blocks     int
	data       []byte
}

// New creates a Muxer.
func New(opts Options) *Muxer {
	if opts.ClusterMaxDurationMs <= 0 || opts.ClusterMaxDurationMs > MaxFrameDurationMs || math.IsNaN(opts.ClusterMaxDurationMs) {
		opts.ClusterMaxDurationMs = ClusterMaxDurationMs
	}
	return &Muxer{
		opts:   opts,
		digest: sha256.New(),
	}
}

// Add appends a frame. The first error is sticky: later calls to Add and
// Finalize return it.
func (m *Muxer) Add(f Frame) error {
	if m.err != nil {
		return m.err
	}
	if m.done {
		return errFinalized
	}
	if err := m.validate(f); err != nil {
		m.err = err
		return err
	}

	if m.open != nil && m.open.durationMs+f.DurationMs >= m.opts.ClusterMaxDurationMs {
		if err := m.seal(); err != nil {
			m.err = err
			return err
		}
	}
	if m.open == nil {
		m.open = &openCluster{startMs: m.durationMs}
	}

	relative := int16(math.Round(m.open.durationMs))
	m.open.blocks = append(m.open.blocks, ebml.Binary(idSimpleBlock, simpleBlock(relative, f.Bitstream)))
	m.open.durationMs += f.DurationMs

	m.durationMs += f.DurationMs
	m.frames++
	m.hashFrame(f)
	return nil
}

func (m *Muxer) validate(f Frame) error {
	if math.IsNaN(f.DurationMs) || f.DurationMs < 0 || f.DurationMs > MaxFrameDurationMs {
		return fmt.Errorf("%w: frame %d lasts %v ms, limit is %d", ErrDurationOutOfRange, m.frames, f.DurationMs, MaxFrameDurationMs)
	}
	if len(f.Bitstream) == 0 {
		return fmt.Errorf("%w: frame %d", ErrEmptyFrame, m.frames)
	}
	if m.frames == 0 {
		if f.Width <= 0 || f.Height <= 0 {
			return fmt.Errorf("%w: first frame is %dx%d", ErrFrameSizeMismatch, f.Width, f.Height)
		}
		m.width, m.height = f.Width, f.Height
		return nil
	}
	if f.Width != m.width || f.Height != m.height {
		return fmt.Errorf("%w: frame %d is %dx%d, track is %dx%d", ErrFrameSizeMismatch, m.frames, f.Width, f.Height, m.width, m.height)
	}
	return nil
}

func (m *Muxer) hashFrame(f Frame) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f.DurationMs))
	m.digest.Write(buf[:])
	m.digest.Write(f.Bitstream)
}

// simpleBlock builds a SimpleBlock payload: track number, relative timecode,
// keyframe flag, frame data.
func simpleBlock(relative int16, bitstream []byte) []byte {
	b := make([]byte, 4, 4+len(bitstream))
	b[0] = 0x80 | trackNumber
	binary.BigEndian.PutUint16(b[1:3], uint16(relative))
	b[3] = keyframeFlag
	return append(b, bitstream...)
}

func (m *Muxer) seal() error {
	c := m.open
	m.open = nil

	timecode := uint64(math.Round(c.startMs))
	children := make([]ebml.Element, 0, len(c.blocks)+1)
	children = append(children, ebml.Uint(idTimecode, timecode))
	children = append(children, c.blocks...)

	data, err := ebml.Marshal(ebml.Master(idCluster, children...))
	if err != nil {
		return fmt.Errorf("render cluster %d: %w", len(m.sealed), err)
	}

	m.sealed = append(m.sealed, sealedCluster{
		timecode:   timecode,
		durationMs: c.durationMs,
		blocks:     len(c.blocks),
		data:       data,
	})
	return nil
}

// Finalize renders the complete container. No bytes are returned on error.
func (m *Muxer) Finalize() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.frames == 0 {
		return nil, ErrNoFrames
	}
	if m.open != nil {
		if err := m.seal(); err != nil {
			m.err = err
			return nil, err
		}
	}

	header, err := ebml.Marshal(m.header())
	if err != nil {
		return nil, fmt.Errorf("render EBML header: %w", err)
	}
	info, err := ebml.Marshal(m.info())
	if err != nil {
		return nil, fmt.Errorf("render info: %w", err)
	}
	tracks, err := ebml.Marshal(m.tracks())
	if err != nil {
		return nil, fmt.Errorf("render tracks: %w", err)
	}

	// Cue positions are fixed-width, so a placeholder render has the final size.
	positions := make([]uint64, len(m.sealed))
	cues, err := ebml.Marshal(m.cues(positions))
	if err != nil {
		return nil, fmt.Errorf("render cues: %w", err)
	}
	cuesSize := len(cues)

	offset := uint64(len(info) + len(tracks) + cuesSize)
	for i, c := range m.sealed {
		positions[i] = offset
		offset += uint64(len(c.data))
	}
	cues, err = ebml.Marshal(m.cues(positions))
	if err != nil {
		return nil, fmt.Errorf("render cues: %w", err)
	}
	if len(cues) != cuesSize {
		return nil, fmt.Errorf("cues changed size from %d to %d bytes", cuesSize, len(cues))
	}

	children := make([]ebml.Element, 0, 3+len(m.sealed))
	children = append(children, ebml.Encoded(info), ebml.Encoded(tracks), ebml.Encoded(cues))
	for _, c := range m.sealed {
		children = append(children, ebml.Encoded(c.data))
	}

	out, err := ebml.Marshal(ebml.Encoded(header), ebml.Master(idSegment, children...))
	if err != nil {
		return nil, fmt.Errorf("render segment: %w", err)
	}

	sizeLen, err := ebml.VintSizeLen(offset)
	if err != nil {
		return nil, err
	}
	m.layout = Layout{
		SegmentDataOffset: len(header) + len(SegmentID) + sizeLen,
		InfoSize:          len(info),
		TracksSize:        len(tracks),
		CuesSize:          cuesSize,
		Width:             m.width,
		Height:            m.height,
		Frames:            m.frames,
		DurationMs:        m.durationMs,
		TotalSize:         len(out),
		Clusters:          make([]ClusterLayout, len(m.sealed)),
	}
	for i, c := range m.sealed {
		m.layout.Clusters[i] = ClusterLayout{
			TimecodeMs: c.timecode,
			DurationMs: c.durationMs,
			Blocks:     c.blocks,
			Position:   positions[i],
			Size:       len(c.data),
		}
	}
	m.done = true

	return out, nil
}

func (m *Muxer) header() ebml.Element {
	return ebml.Master(idEBML,
		ebml.Uint(idEBMLVersion, 1),
		ebml.Uint(idEBMLReadVersion, 1),
		ebml.Uint(idEBMLMaxIDLength, 4),
		ebml.Uint(idEBMLMaxSizeLength, 8),
		ebml.String(idDocType, "webm"),
		ebml.Uint(idDocTypeVersion, 2),
		ebml.Uint(idDocTypeReadVersion, 2),
	)
}

func (m *Muxer) info() ebml.Element {
	uid := uuid.NewSHA1(uuid.NameSpaceOID, m.digest.Sum(nil))
	return ebml.Master(idInfo,
		ebml.Uint(idTimecodeScale, TimecodeScale),
		ebml.String(idMuxingApp, m.opts.MuxingApp),
		ebml.String(idWritingApp, m.opts.WritingApp),
		ebml.Binary(idSegmentUID, uid[:]),
		ebml.Float(idDuration, m.durationMs),
	)
}

func (m *Muxer) tracks() ebml.Element {
	return ebml.Master(idTracks,
		ebml.Master(idTrackEntry,
			ebml.Uint(idTrackNumber, trackNumber),
			ebml.Uint(idTrackUID, trackNumber),
			ebml.Uint(idFlagLacing, 0),
			ebml.String(idLanguage, "und"),
			ebml.String(idCodecID, CodecID),
			ebml.String(idCodecName, "VP8"),
			ebml.Uint(idTrackType, 1),
			ebml.Master(idVideo,
				ebml.Uint(idPixelWidth, uint64(m.width)),
				ebml.Uint(idPixelHeight, uint64(m.height)),
			),
		),
	)
}

func (m *Muxer) cues(positions []uint64) ebml.Element {
	points := make([]ebml.Element, len(m.sealed))
	for i, c := range m.sealed {
		points[i] = ebml.Master(idCuePoint,
			ebml.Uint(idCueTime, c.timecode),
			ebml.Master(idCueTrackPositions,
				ebml.Uint(idCueTrack, trackNumber),
				ebml.FixedUint(idCueClusterPosition, positions[i], cuePositionWidth),
			),
		)
	}
	return ebml.Master(idCues, points...)
}

// Frames returns the number of frames added so far.
func (m *Muxer) Frames() int {
	return m.frames
}

// DurationMs returns the summed duration of the frames added so far.
func (m *Muxer) DurationMs() float64 {
	return m.durationMs
}

// Layout describes the rendered container. It is populated by Finalize.
func (m *Muxer) Layout() Layout {
	l := m.layout
	l.Clusters = append([]ClusterLayout(nil), m.layout.Clusters...)
	return l
}

// Mux muxes frames in one call.
func Mux(frames []Frame, opts Options) ([]byte, error) {
	m := New(opts)
	for _, f := range frames {
		if err := m.Add(f); err != nil {
			return nil, err
		}
	}
	return m.Finalize()
}

// Package inspect decodes WebM files and checks their cue index.
package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/bits"

	goebml "github.com/at-wat/ebml-go"

	"github.com/user/framecast/pkg/webm"
)

var (
	// ErrNoSegment is returned when the file has no Segment element.
	ErrNoSegment = errors.New("segment not found")

	// ErrCueMismatch is returned by Validate when a cue point does not
	// reference the cluster it indexes.
	ErrCueMismatch = errors.New("cue mismatch")
)

type document struct {
	Header  header  `ebml:"EBML"`
	Segment segment `ebml:"Segment"`
}

type header struct {
	EBMLDocType        string
	EBMLDocTypeVersion uint64
}

type segment struct {
	Info    info
	Tracks  tracks
	Cues    cues
	Cluster []cluster
}

type info struct {
	TimecodeScale uint64
	MuxingApp     string
	WritingApp    string
	Duration      float64
}

type tracks struct {
	TrackEntry []trackEntry
}

type trackEntry struct {
	TrackNumber uint64
	CodecID     string
	Video       video
}

type video struct {
	PixelWidth  uint64
	PixelHeight uint64
}

type cues struct {
	CuePoint []cuePoint
}

type cuePoint struct {
	CueTime           uint64
	CueTrackPositions []cueTrackPositions
}

type cueTrackPositions struct {
	CueTrack           uint64
	CueClusterPosition uint64
}

type cluster struct {
	Timecode    uint64
	SimpleBlock []goebml.Block
}

// Report describes a decoded WebM file.
type Report struct {
	DocType        string
	DocTypeVersion uint64
	MuxingApp      string
	WritingApp     string
	TimecodeScale  uint64
	DurationMs     float64

	CodecID string
	Width   int
	Height  int

	SegmentDataOffset int
	Frames            int
	Keyframes         int
	Clusters          []Cluster
	CuePoints         []CuePoint
}

// Cluster summarizes one cluster.
type Cluster struct {
	TimecodeMs uint64
	Blocks     int
}

// CuePoint is one cue with the outcome of checking its position.
type CuePoint struct {
	TimeMs   uint64
	Track    uint64
	Position uint64
	Problem  string // empty when the cue is valid
}

// Inspect decodes data and checks every cue point.
func Inspect(data []byte) (*Report, error) {
	var doc document
	if err := goebml.Unmarshal(bytes.NewReader(data), &doc); err != nil {
		return nil, fmt.Errorf("decode container: %w", err)
	}

	start, err := segmentDataStart(data)
	if err != nil {
		return nil, err
	}

	r := &Report{
		DocType:           doc.Header.EBMLDocType,
		DocTypeVersion:    doc.Header.EBMLDocTypeVersion,
		MuxingApp:         doc.Segment.Info.MuxingApp,
		WritingApp:        doc.Segment.Info.WritingApp,
		TimecodeScale:     doc.Segment.Info.TimecodeScale,
		DurationMs:        doc.Segment.Info.Duration,
		SegmentDataOffset: start,
	}

	if len(doc.Segment.Tracks.TrackEntry) > 0 {
		t := doc.Segment.Tracks.TrackEntry[0]
		r.CodecID = t.CodecID
		r.Width = int(t.Video.PixelWidth)
		r.Height = int(t.Video.PixelHeight)
	}

	for _, c := range doc.Segment.Cluster {
		r.Clusters = append(r.Clusters, Cluster{TimecodeMs: c.Timecode, Blocks: len(c.SimpleBlock)})
		r.Frames += len(c.SimpleBlock)
		for _, b := range c.SimpleBlock {
			if b.Keyframe {
				r.Keyframes++
			}
		}
	}

	for _, cp := range doc.Segment.Cues.CuePoint {
		for _, pos := range cp.CueTrackPositions {
			r.CuePoints = append(r.CuePoints, CuePoint{
				TimeMs:   cp.CueTime,
				Track:    pos.CueTrack,
				Position: pos.CueClusterPosition,
				Problem:  checkCue(data, start, cp.CueTime, pos.CueClusterPosition),
			})
		}
	}

	return r, nil
}

// Validate reports the first invalid cue point, or a cue count that differs
// from the cluster count.
func (r *Report) Validate() error {
	if len(r.CuePoints) != len(r.Clusters) {
		return fmt.Errorf("%w: %d cue points for %d clusters", ErrCueMismatch, len(r.CuePoints), len(r.Clusters))
	}
	for i, cp := range r.CuePoints {
		if cp.Problem != "" {
			return fmt.Errorf("%w: cue %d: %s", ErrCueMismatch, i, cp.Problem)
		}
	}
	return nil
}

// segmentDataStart returns the offset of the first byte after the Segment
// header. The EBML header is small, so the first Segment ID is the element.
func segmentDataStart(data []byte) (int, error) {
	idx := bytes.Index(data, webm.SegmentID)
	if idx < 0 {
		return 0, ErrNoSegment
	}
	_, n, ok := readSize(data[idx+len(webm.SegmentID):])
	if !ok {
		return 0, fmt.Errorf("%w: bad size field", ErrNoSegment)
	}
	return idx + len(webm.SegmentID) + n, nil
}

// readSize decodes the EBML size field at the start of b. unknown reports
// the reserved all-ones value.
func readSize(b []byte) (size uint64, n int, ok bool) {
	if len(b) == 0 || b[0] == 0 {
		return 0, 0, false
	}
	n = bits.LeadingZeros8(b[0]) + 1
	if len(b) < n {
		return 0, 0, false
	}
	size = uint64(b[0] & (0xFF >> n))
	for _, c := range b[1:n] {
		size = size<<8 | uint64(c)
	}
	return size, n, true
}

func unknownSize(size uint64, n int) bool {
	return size == 1<<(7*uint(n))-1
}

// checkCue reports why a cue does not reference a cluster with its time,
// or "" when it does. Only the referenced Cluster element is decoded.
func checkCue(data []byte, start int, timeMs, position uint64) string {
	idLen := len(webm.ClusterID)
	var avail uint64
	if start < len(data) {
		avail = uint64(len(data) - start)
	}
	if position > avail || avail-position < uint64(idLen) {
		return fmt.Sprintf("position %d is past the end of the file", position)
	}

	at := start + int(position)
	if !bytes.Equal(data[at:at+idLen], webm.ClusterID) {
		return fmt.Sprintf("position %d is not a cluster", position)
	}

	size, n, ok := readSize(data[at+idLen:])
	if !ok {
		return fmt.Sprintf("cluster at position %d has a bad size field", position)
	}
	body := at + idLen + n
	end := len(data)
	if !unknownSize(size, n) {
		if size > uint64(len(data)-body) {
			return fmt.Sprintf("cluster at position %d runs past the end of the file", position)
		}
		end = body + int(size)
	}

	var one struct {
		Cluster []cluster
	}
	if err := goebml.Unmarshal(bytes.NewReader(data[at:end]), &one); err != nil || len(one.Cluster) == 0 {
		return fmt.Sprintf("cluster at position %d does not decode", position)
	}
	if tc := one.Cluster[0].Timecode; tc != timeMs {
		return fmt.Sprintf("cue time %d but cluster timecode %d", timeMs, tc)
	}
	return ""
}

// Write prints the report in a human-readable form.
func (r *Report) Write(w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "doctype:   %s v%d\n", r.DocType, r.DocTypeVersion)
	fmt.Fprintf(&b, "apps:      %s / %s\n", r.MuxingApp, r.WritingApp)
	fmt.Fprintf(&b, "track:     %s %dx%d\n", r.CodecID, r.Width, r.Height)
	fmt.Fprintf(&b, "duration:  %.3f ms (scale %d ns)\n", r.DurationMs, r.TimecodeScale)
	fmt.Fprintf(&b, "frames:    %d (%d keyframes)\n", r.Frames, r.Keyframes)
	fmt.Fprintf(&b, "clusters:  %d\n", len(r.Clusters))
	for i, c := range r.Clusters {
		fmt.Fprintf(&b, "  #%-3d t=%-8d blocks=%d\n", i, c.TimecodeMs, c.Blocks)
	}
	fmt.Fprintf(&b, "cues:      %d\n", len(r.CuePoints))
	for i, cp := range r.CuePoints {
		status := "ok"
		if cp.Problem != "" {
			status = cp.Problem
		}
		fmt.Fprintf(&b, "  #%-3d t=%-8d track=%d pos=%-10d %s\n", i, cp.TimeMs, cp.Track, cp.Position, status)
	}
	_, err := w.Write(b.Bytes())
	return err
}

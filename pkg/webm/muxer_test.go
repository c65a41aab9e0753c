package webm

import (
	"bytes"
	"errors"
	"math"
	"math/bits"
	"testing"

	goebml "github.com/at-wat/ebml-go"

	"github.com/user/framecast/pkg/webp/webptest"
)

type testDoc struct {
	Header  testHeader  `ebml:"EBML"`
	Segment testSegment `ebml:"Segment"`
}

type testHeader struct {
	EBMLVersion        uint64
	EBMLDocType        string
	EBMLDocTypeVersion uint64
}

type testSegment struct {
	Info    testInfo
	Tracks  testTracks
	Cues    testCues
	Cluster []testCluster
}

type testInfo struct {
	TimecodeScale uint64
	MuxingApp     string
	WritingApp    string
	SegmentUID    []byte
	Duration      float64
}

type testTracks struct {
	TrackEntry []testTrackEntry
}

type testTrackEntry struct {
	TrackNumber uint64
	TrackType   uint64
	CodecID     string
	Video       testVideo
}

type testVideo struct {
	PixelWidth  uint64
	PixelHeight uint64
}

type testCues struct {
	CuePoint []testCuePoint
}

type testCuePoint struct {
	CueTime           uint64
	CueTrackPositions []testCueTrackPositions
}

type testCueTrackPositions struct {
	CueTrack           uint64
	CueClusterPosition uint64
}

type testCluster struct {
	Timecode    uint64
	SimpleBlock []goebml.Block
}

func decode(t *testing.T, data []byte) testDoc {
	t.Helper()
	var doc testDoc
	if err := goebml.Unmarshal(bytes.NewReader(data), &doc); err != nil {
		t.Fatalf("decode container: %v", err)
	}
	return doc
}

func segmentDataStart(t *testing.T, data []byte) int {
	t.Helper()
	idx := bytes.Index(data, SegmentID)
	if idx < 0 {
		t.Fatal("segment not found")
	}
	sizeLen := bits.LeadingZeros8(data[idx+len(SegmentID)]) + 1
	return idx + len(SegmentID) + sizeLen
}

func frames(durations ...float64) []Frame {
	out := make([]Frame, len(durations))
	for i, d := range durations {
		out[i] = Frame{
			Width:      160,
			Height:     120,
			DurationMs: d,
			Bitstream:  webptest.KeyFrame(160, 120, []byte{byte(i), byte(i >> 8), 0x5A}),
		}
	}
	return out
}

func repeat(d float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestMux_Structure(t *testing.T) {
	in := frames(100, 100, 100)
	opts := DefaultOptions()
	opts.MuxingApp = "muxer-test"
	opts.WritingApp = "writer-test"

	data, err := Mux(in, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := decode(t, data)

	if doc.Header.EBMLVersion != 1 || doc.Header.EBMLDocType != "webm" || doc.Header.EBMLDocTypeVersion != 2 {
		t.Errorf("unexpected header: %+v", doc.Header)
	}

	info := doc.Segment.Info
	if info.TimecodeScale != TimecodeScale {
		t.Errorf("expected timecode scale %d, got %d", TimecodeScale, info.TimecodeScale)
	}
	if info.MuxingApp != "muxer-test" || info.WritingApp != "writer-test" {
		t.Errorf("unexpected apps: %q %q", info.MuxingApp, info.WritingApp)
	}
	if len(info.SegmentUID) != 16 {
		t.Errorf("expected 16-byte segment UID, got %d bytes", len(info.SegmentUID))
	}
	if info.Duration != 300 {
		t.Errorf("expected duration 300, got %v", info.Duration)
	}

	if len(doc.Segment.Tracks.TrackEntry) != 1 {
		t.Fatalf("expected 1 track, got %d", len(doc.Segment.Tracks.TrackEntry))
	}
	track := doc.Segment.Tracks.TrackEntry[0]
	if track.TrackNumber != 1 || track.TrackType != 1 || track.CodecID != CodecID {
		t.Errorf("unexpected track: %+v", track)
	}
	if track.Video.PixelWidth != 160 || track.Video.PixelHeight != 120 {
		t.Errorf("expected 160x120, got %dx%d", track.Video.PixelWidth, track.Video.PixelHeight)
	}

	if len(doc.Segment.Cluster) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(doc.Segment.Cluster))
	}
	blocks := doc.Segment.Cluster[0].SimpleBlock
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.TrackNumber != 1 {
			t.Errorf("block %d: expected track 1, got %d", i, b.TrackNumber)
		}
		if !b.Keyframe {
			t.Errorf("block %d: expected keyframe flag", i)
		}
		if int(b.Timecode) != i*100 {
			t.Errorf("block %d: expected timecode %d, got %d", i, i*100, b.Timecode)
		}
		if len(b.Data) != 1 || !bytes.Equal(b.Data[0], in[i].Bitstream) {
			t.Errorf("block %d: payload differs from bitstream", i)
		}
	}
}

func TestMux_Deterministic(t *testing.T) {
	in := frames(repeat(40, 50)...)

	a, err := Mux(in, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Mux(in, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected identical output for identical input")
	}

	in[3].Bitstream = webptest.KeyFrame(160, 120, []byte{0xFF})
	c, err := Mux(in, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Equal(decode(t, a).Segment.Info.SegmentUID, decode(t, c).Segment.Info.SegmentUID) {
		t.Error("expected segment UID to depend on frame content")
	}
}

func TestMuxer_FrameSizeMismatch(t *testing.T) {
	m := New(DefaultOptions())
	in := frames(100, 100)
	in[1].Width = 161

	if err := m.Add(in[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Add(in[1]); !errors.Is(err, ErrFrameSizeMismatch) {
		t.Fatalf("expected ErrFrameSizeMismatch, got %v", err)
	}

	data, err := m.Finalize()
	if !errors.Is(err, ErrFrameSizeMismatch) {
		t.Errorf("expected Finalize to return the sticky error, got %v", err)
	}
	if data != nil {
		t.Error("expected no output after a failed frame")
	}
	if m.Frames() != 1 {
		t.Errorf("expected 1 accepted frame, got %d", m.Frames())
	}
}

func TestMuxer_DurationOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		wantErr  bool
	}{
		{"zero", 0, false},
		{"max", MaxFrameDurationMs, false},
		{"negative", -1, true},
		{"too long", MaxFrameDurationMs + 1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(DefaultOptions())
			err := m.Add(frames(tt.duration)[0])
			if tt.wantErr {
				if !errors.Is(err, ErrDurationOutOfRange) {
					t.Errorf("expected ErrDurationOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMuxer_EmptyBitstream(t *testing.T) {
	m := New(DefaultOptions())
	f := frames(100)[0]
	f.Bitstream = nil
	if err := m.Add(f); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("expected ErrEmptyFrame, got %v", err)
	}
	if m.Frames() != 0 {
		t.Errorf("expected no accepted frames, got %d", m.Frames())
	}
}

func TestMuxer_NoFrames(t *testing.T) {
	if _, err := New(DefaultOptions()).Finalize(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestMuxer_AddAfterFinalize(t *testing.T) {
	m := New(DefaultOptions())
	if err := m.Add(frames(10)[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Add(frames(10)[0]); err == nil {
		t.Error("expected error when adding after Finalize")
	}
}

func TestMux_DurationSumExact(t *testing.T) {
	durations := []float64{33.3, 33.3, 33.4, 0.1, 16.666666666666668, 1e-9}
	var want float64
	for _, d := range durations {
		want += d
	}

	data, err := Mux(frames(durations...), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := decode(t, data).Segment.Info.Duration; got != want {
		t.Errorf("expected duration %v, got %v", want, got)
	}
}

func TestMux_ClusterCap(t *testing.T) {
	data, err := Mux(frames(repeat(1000, 100)...), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := decode(t, data)
	clusters := doc.Segment.Cluster

	wantBlocks := []int{29, 29, 29, 13}
	if len(clusters) != len(wantBlocks) {
		t.Fatalf("expected %d clusters, got %d", len(wantBlocks), len(clusters))
	}

	var start uint64
	for i, c := range clusters {
		if len(c.SimpleBlock) != wantBlocks[i] {
			t.Errorf("cluster %d: expected %d blocks, got %d", i, wantBlocks[i], len(c.SimpleBlock))
		}
		if c.Timecode != start {
			t.Errorf("cluster %d: expected timecode %d, got %d", i, start, c.Timecode)
		}
		sum := len(c.SimpleBlock) * 1000
		if sum >= ClusterMaxDurationMs {
			t.Errorf("cluster %d: duration %d reaches the cap", i, sum)
		}
		last := c.SimpleBlock[len(c.SimpleBlock)-1]
		if int(last.Timecode) != (len(c.SimpleBlock)-1)*1000 {
			t.Errorf("cluster %d: last block at %d", i, last.Timecode)
		}
		start += uint64(sum)
	}
}

func TestMux_OverCapSingleFrame(t *testing.T) {
	m := New(DefaultOptions())
	for _, f := range frames(1000, 31000, 1000) {
		if err := m.Add(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	data, err := m.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	layout := m.Layout()
	if len(layout.Clusters) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(layout.Clusters))
	}
	for i, c := range layout.Clusters {
		if c.Blocks != 1 {
			t.Errorf("cluster %d: expected 1 block, got %d", i, c.Blocks)
		}
	}
	if layout.Clusters[1].DurationMs != 31000 {
		t.Errorf("expected oversized cluster of 31000 ms, got %v", layout.Clusters[1].DurationMs)
	}

	doc := decode(t, data)
	wantTimecodes := []uint64{0, 1000, 32000}
	for i, c := range doc.Segment.Cluster {
		if c.Timecode != wantTimecodes[i] {
			t.Errorf("cluster %d: expected timecode %d, got %d", i, wantTimecodes[i], c.Timecode)
		}
	}
	if doc.Segment.Info.Duration != 33000 {
		t.Errorf("expected duration 33000, got %v", doc.Segment.Info.Duration)
	}
}

func TestMux_CustomCap(t *testing.T) {
	opts := DefaultOptions()
	opts.ClusterMaxDurationMs = 250

	m := New(opts)
	for _, f := range frames(repeat(100, 7)...) {
		if err := m.Add(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := m.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 2, 2, 1}
	clusters := m.Layout().Clusters
	if len(clusters) != len(want) {
		t.Fatalf("expected %d clusters, got %d", len(want), len(clusters))
	}
	for i, c := range clusters {
		if c.Blocks != want[i] {
			t.Errorf("cluster %d: expected %d blocks, got %d", i, want[i], c.Blocks)
		}
	}
}

func TestMux_Rounding(t *testing.T) {
	opts := DefaultOptions()
	opts.ClusterMaxDurationMs = 101

	data, err := Mux(frames(33.4, 33.4, 33.4, 60.6), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := decode(t, data)
	if len(doc.Segment.Cluster) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(doc.Segment.Cluster))
	}

	var got []int16
	for _, b := range doc.Segment.Cluster[0].SimpleBlock {
		got = append(got, b.Timecode)
	}
	want := []int16{0, 33, 67}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("expected relative timecodes %v, got %v", want, got)
		}
	}

	// second cluster starts at 100.2 ms
	if doc.Segment.Cluster[1].Timecode != 100 {
		t.Errorf("expected second cluster at 100, got %d", doc.Segment.Cluster[1].Timecode)
	}
}

func TestMux_CueOffsets(t *testing.T) {
	durations := repeat(700, 200)
	durations[50] = 20000

	m := New(DefaultOptions())
	for _, f := range frames(durations...) {
		if err := m.Add(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	data, err := m.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := decode(t, data)
	start := segmentDataStart(t, data)

	if m.Layout().SegmentDataOffset != start {
		t.Errorf("layout reports segment data at %d, found at %d", m.Layout().SegmentDataOffset, start)
	}

	cues := doc.Segment.Cues.CuePoint
	if len(cues) != len(doc.Segment.Cluster) {
		t.Fatalf("expected %d cue points, got %d", len(doc.Segment.Cluster), len(cues))
	}

	for i, cue := range cues {
		if len(cue.CueTrackPositions) != 1 {
			t.Fatalf("cue %d: expected 1 track position", i)
		}
		pos := cue.CueTrackPositions[0]
		if pos.CueTrack != 1 {
			t.Errorf("cue %d: expected track 1, got %d", i, pos.CueTrack)
		}

		at := start + int(pos.CueClusterPosition)
		if at+len(ClusterID) > len(data) || !bytes.Equal(data[at:at+len(ClusterID)], ClusterID) {
			t.Fatalf("cue %d: position %d does not point at a cluster", i, pos.CueClusterPosition)
		}

		var tail struct {
			Cluster []testCluster
		}
		if err := goebml.Unmarshal(bytes.NewReader(data[at:]), &tail); err != nil {
			t.Fatalf("cue %d: decode cluster at position: %v", i, err)
		}
		if len(tail.Cluster) != len(cues)-i {
			t.Fatalf("cue %d: expected %d clusters from position, got %d", i, len(cues)-i, len(tail.Cluster))
		}
		cluster := tail.Cluster[0]
		if cluster.Timecode != cue.CueTime {
			t.Errorf("cue %d: time %d but cluster at position has timecode %d", i, cue.CueTime, cluster.Timecode)
		}
		if cluster.Timecode != doc.Segment.Cluster[i].Timecode {
			t.Errorf("cue %d: points at cluster with timecode %d, want %d", i, cluster.Timecode, doc.Segment.Cluster[i].Timecode)
		}
	}
}

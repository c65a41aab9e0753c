package webp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"golang.org/x/image/vp8"
	xwebp "golang.org/x/image/webp"

	"github.com/user/framecast/pkg/webp/webptest"
)

func TestExtract_Simple(t *testing.T) {
	data := webptest.Encode(320, 240, []byte{1, 2, 3, 4})

	img, err := Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if img.Width != 320 || img.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", img.Width, img.Height)
	}

	want := webptest.KeyFrame(320, 240, []byte{1, 2, 3, 4})
	if !bytes.Equal(img.Bitstream, want) {
		t.Errorf("bitstream mismatch:\n got % X\nwant % X", img.Bitstream, want)
	}
}

func TestExtract_MatchesIndependentDecoders(t *testing.T) {
	sizes := [][2]int{{1, 1}, {16, 16}, {641, 479}, {16383, 2}}

	for _, s := range sizes {
		data := webptest.Encode(s[0], s[1], []byte{9, 9})

		img, err := Extract(data)
		if err != nil {
			t.Fatalf("%dx%d: unexpected error: %v", s[0], s[1], err)
		}

		d := vp8.NewDecoder()
		d.Init(bytes.NewReader(img.Bitstream), len(img.Bitstream))
		fh, err := d.DecodeFrameHeader()
		if err != nil {
			t.Fatalf("%dx%d: vp8 header: %v", s[0], s[1], err)
		}
		if !fh.KeyFrame || fh.Width != img.Width || fh.Height != img.Height {
			t.Errorf("vp8 reader saw %+v, extractor saw %dx%d", fh, img.Width, img.Height)
		}

		cfg, err := xwebp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%dx%d: webp config: %v", s[0], s[1], err)
		}
		if cfg.Width != img.Width || cfg.Height != img.Height {
			t.Errorf("webp reader saw %dx%d, extractor saw %dx%d", cfg.Width, cfg.Height, img.Width, img.Height)
		}
	}
}

func TestExtract_ScaleBitsIgnored(t *testing.T) {
	frame := webptest.KeyFrame(100, 50, nil)
	// upper two bits of each dimension carry scaling hints
	frame[7] |= 0xC0
	frame[9] |= 0x40

	img, err := Extract(webptest.Container(webptest.Chunk("VP8 ", frame)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Width != 100 || img.Height != 50 {
		t.Errorf("expected 100x50, got %dx%d", img.Width, img.Height)
	}
}

func TestExtract_ExtendedFormat(t *testing.T) {
	vp8x := make([]byte, 10)
	frame := webptest.KeyFrame(64, 48, []byte{7, 7, 7})
	data := webptest.Container(
		webptest.Chunk("VP8X", vp8x),
		webptest.Chunk("ICCP", []byte{1, 2, 3}),
		webptest.Chunk("VP8 ", frame),
		webptest.Chunk("EXIF", []byte{0}),
	)

	img, err := Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Width != 64 || img.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", img.Width, img.Height)
	}
	if !bytes.Equal(img.Bitstream, frame) {
		t.Error("expected bitstream to be the VP8 chunk payload")
	}
}

func TestExtract_NestedList(t *testing.T) {
	frame := webptest.KeyFrame(8, 8, []byte{1})
	list := append([]byte("wrap"), webptest.Chunk("VP8 ", frame)...)
	data := webptest.Container(webptest.Chunk("LIST", list))

	img, err := Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Width != 8 || img.Height != 8 {
		t.Errorf("expected 8x8, got %dx%d", img.Width, img.Height)
	}
}

func TestExtract_Malformed(t *testing.T) {
	good := webptest.Encode(10, 10, []byte{1, 2})

	interFrame := webptest.KeyFrame(10, 10, []byte{1, 2})
	interFrame[0] |= 0x01

	noStartCode := webptest.KeyFrame(10, 10, []byte{1, 2})
	noStartCode[3] = 0x00

	badRIFFSize := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badRIFFSize[4:8], uint32(len(good)))

	badChunkSize := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badChunkSize[16:20], 1000)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte("RIFF\x00\x00")},
		{"not RIFF", append([]byte("RIFX"), good[4:]...)},
		{"not WEBP", append(append([]byte(nil), good[:8]...), append([]byte("WAVE"), good[12:]...)...)},
		{"truncated file", good[:len(good)-3]},
		{"riff size too large", badRIFFSize},
		{"chunk size too large", badChunkSize},
		{"lossless", webptest.Container(webptest.Chunk("VP8L", []byte{0x2F, 0, 0, 0, 0}))},
		{"no image chunk", webptest.Container(webptest.Chunk("EXIF", []byte{1, 2}))},
		{"inter frame", webptest.Container(webptest.Chunk("VP8 ", interFrame))},
		{"missing start code", webptest.Container(webptest.Chunk("VP8 ", noStartCode))},
		{"truncated frame header", webptest.Container(webptest.Chunk("VP8 ", []byte{0x10, 0, 0, 0x9D, 0x01, 0x2A, 10}))},
		{"zero width", webptest.Encode(0, 10, nil)},
		{"zero height", webptest.Encode(10, 0, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Extract(tt.data)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if img.Bitstream != nil {
				t.Error("expected no partial result")
			}
		})
	}
}

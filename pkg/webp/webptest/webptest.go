// Package webptest builds synthetic WebP stills for tests.
//
// The stills carry a well-formed VP8 keyframe header so that header readers
// accept them; the partition data is arbitrary and will not decode to pixels.
package webptest

import (
	"encoding/binary"
)

// KeyFrame returns a VP8 keyframe bitstream: frame tag, start code,
// dimensions, then payload.
func KeyFrame(width, height int, payload []byte) []byte {
	firstPartition := uint32(len(payload))
	// keyframe bit 0 clear, version 0, show_frame set
	tag := uint32(0x10) | firstPartition<<5

	b := make([]byte, 0, 10+len(payload))
	b = append(b, byte(tag), byte(tag>>8), byte(tag>>16))
	b = append(b, 0x9D, 0x01, 0x2A)
	b = binary.LittleEndian.AppendUint16(b, uint16(width)&0x3FFF)
	b = binary.LittleEndian.AppendUint16(b, uint16(height)&0x3FFF)
	return append(b, payload...)
}

// Chunk encodes one RIFF chunk with its pad byte.
func Chunk(tag string, body []byte) []byte {
	b := make([]byte, 0, 8+len(body)+1)
	b = append(b, tag[:4]...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(body)))
	b = append(b, body...)
	if len(body)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

// Container wraps chunks in a RIFF/WEBP header.
func Container(chunks ...[]byte) []byte {
	body := []byte("WEBP")
	for _, c := range chunks {
		body = append(body, c...)
	}
	b := make([]byte, 0, 8+len(body))
	b = append(b, "RIFF"...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(body)))
	return append(b, body...)
}

// Encode returns a simple-format lossy WebP still of the given size.
func Encode(width, height int, payload []byte) []byte {
	return Container(Chunk("VP8 ", KeyFrame(width, height, payload)))
}

// Frames returns n stills of one size whose payloads differ by index.
func Frames(n, width, height int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = Encode(width, height, []byte{byte(i), byte(i >> 8), 0xAB, byte(i * 7)})
	}
	return out
}

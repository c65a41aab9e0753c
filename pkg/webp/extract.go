// Package webp extracts the VP8 keyframe bitstream from lossy WebP stills.
package webp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a still cannot be turned into a VP8 keyframe.
var ErrMalformed = errors.New("malformed still image")

// Image is the keyframe carried by one WebP still.
type Image struct {
	Width  int
	Height int

	// Bitstream is the payload of the "VP8 " chunk, frame tag included.
	Bitstream []byte
}

var startCode = []byte{0x9D, 0x01, 0x2A}

const (
	chunkHeaderSize = 8
	frameTagSize    = 3
	dimensionMask   = 0x3FFF
)

// Extract walks the RIFF chunk tree of data and returns the VP8 keyframe.
func Extract(data []byte) (Image, error) {
	if len(data) < 12 {
		return Image{}, malformed("truncated RIFF header (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return Image{}, malformed("missing RIFF signature")
	}
	if string(data[8:12]) != "WEBP" {
		return Image{}, malformed("form type %q is not WEBP", data[8:12])
	}

	size := int(binary.LittleEndian.Uint32(data[4:8]))
	if size < 4 || 8+size > len(data) {
		return Image{}, malformed("RIFF size %d exceeds %d available bytes", size, len(data)-8)
	}

	payload, err := findChunk(data[12:8+size], "VP8 ")
	if err != nil {
		return Image{}, err
	}
	return parseKeyFrame(payload)
}

// findChunk searches a chunk list for tag, descending into RIFF and LIST chunks.
func findChunk(list []byte, tag string) ([]byte, error) {
	var seen []string
	for len(list) > 0 {
		if len(list) < chunkHeaderSize {
			return nil, malformed("truncated chunk header")
		}
		id := string(list[0:4])
		size := int(binary.LittleEndian.Uint32(list[4:8]))
		if size > len(list)-chunkHeaderSize {
			return nil, malformed("chunk %q declares %d bytes, %d available", id, size, len(list)-chunkHeaderSize)
		}
		body := list[chunkHeaderSize : chunkHeaderSize+size]

		switch id {
		case tag:
			return body, nil
		case "RIFF", "LIST":
			if len(body) >= 4 {
				if found, err := findChunk(body[4:], tag); err == nil {
					return found, nil
				}
			}
		}
		seen = append(seen, id)

		next := chunkHeaderSize + size + size&1
		if next > len(list) {
			next = len(list)
		}
		list = list[next:]
	}

	for _, id := range seen {
		if id == "VP8L" {
			return nil, malformed("lossless (VP8L) stills carry no VP8 keyframe")
		}
	}
	return nil, malformed("no %q chunk (found %v)", tag, seen)
}

func parseKeyFrame(b []byte) (Image, error) {
	if len(b) < frameTagSize {
		return Image{}, malformed("VP8 chunk too short (%d bytes)", len(b))
	}
	if b[0]&0x01 != 0 {
		return Image{}, malformed("VP8 frame is not a keyframe")
	}

	at := bytes.Index(b[frameTagSize:], startCode)
	if at < 0 {
		return Image{}, malformed("VP8 start code not found")
	}
	at += frameTagSize + len(startCode)
	if at+4 > len(b) {
		return Image{}, malformed("VP8 frame header truncated")
	}

	width := int(binary.LittleEndian.Uint16(b[at:]) & dimensionMask)
	height := int(binary.LittleEndian.Uint16(b[at+2:]) & dimensionMask)
	if width == 0 || height == 0 {
		return Image{}, malformed("zero dimension %dx%d", width, height)
	}

	return Image{Width: width, Height: height, Bitstream: b}, nil
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Package webpdecoder extracts VP8 keyframes from lossy WebP stills.
package webpdecoder

import (
	"bytes"
	"fmt"

	"golang.org/x/image/vp8"
	xwebp "golang.org/x/image/webp"

	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/webp"
)

// Options configures the decoder.
type Options struct {
	// Verify cross-checks every still against golang.org/x/image headers.
	Verify bool
}

// Decoder implements ports.StillImageDecoder. It is safe for concurrent use.
type Decoder struct {
	opts Options
}

// New creates a new decoder.
func New(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// DecodeStill returns the keyframe carried by data.
func (d *Decoder) DecodeStill(data []byte) (ports.StillImage, error) {
	img, err := webp.Extract(data)
	if err != nil {
		return ports.StillImage{}, err
	}

	if d.opts.Verify {
		if err := verify(data, img); err != nil {
			return ports.StillImage{}, err
		}
	}

	return ports.StillImage{
		Width:     img.Width,
		Height:    img.Height,
		Bitstream: img.Bitstream,
	}, nil
}

func verify(data []byte, img webp.Image) error {
	dec := vp8.NewDecoder()
	dec.Init(bytes.NewReader(img.Bitstream), len(img.Bitstream))
	fh, err := dec.DecodeFrameHeader()
	if err != nil {
		return fmt.Errorf("%w: vp8 header: %v", webp.ErrMalformed, err)
	}
	if !fh.KeyFrame {
		return fmt.Errorf("%w: vp8 header reports an inter frame", webp.ErrMalformed)
	}
	if fh.Width != img.Width || fh.Height != img.Height {
		return fmt.Errorf("%w: vp8 header is %dx%d, extracted %dx%d",
			webp.ErrMalformed, fh.Width, fh.Height, img.Width, img.Height)
	}

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: webp config: %v", webp.ErrMalformed, err)
	}
	if cfg.Width != img.Width || cfg.Height != img.Height {
		return fmt.Errorf("%w: container is %dx%d, frame is %dx%d",
			webp.ErrMalformed, cfg.Width, cfg.Height, img.Width, img.Height)
	}
	return nil
}

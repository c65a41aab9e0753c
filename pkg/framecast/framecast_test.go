package framecast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framecast/pkg/adapters/filesource"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/webm"
	"github.com/user/framecast/pkg/webp/webptest"
)

var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

func TestEncodeStills(t *testing.T) {
	cfg := NewConfigBuilder().WithFrameDurationMs(50).WithConcurrency(2).Build()

	data, err := EncodeStills(context.Background(), webptest.Frames(8, 32, 24), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, ebmlMagic) {
		t.Fatalf("expected EBML header, got % X", data[:min(len(data), 4)])
	}
}

func TestEncode_Result(t *testing.T) {
	cfg := NewConfigBuilder().WithClusterMaxDurationMs(250).Build()

	stills := webptest.Frames(5, 32, 24)
	source := make(pipeline.StillSource, len(stills))
	for i, s := range stills {
		source[i].Data = s
		source[i].DurationMs = 100
	}

	result, err := Encode(context.Background(), source, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FrameCount != 5 || result.DurationMs != 500 {
		t.Errorf("expected 5 frames over 500 ms, got %d over %v", result.FrameCount, result.DurationMs)
	}
	if result.Width != 32 || result.Height != 24 {
		t.Errorf("expected 32x24, got %dx%d", result.Width, result.Height)
	}
	if result.Clusters != 3 {
		t.Errorf("expected 3 clusters under a 250 ms cap, got %d", result.Clusters)
	}
}

func TestEncodeStills_Errors(t *testing.T) {
	cfg := NewConfigBuilder().Build()

	tests := []struct {
		name    string
		stills  [][]byte
		wantErr error
	}{
		{
			name:    "no stills",
			stills:  nil,
			wantErr: webm.ErrNoFrames,
		},
		{
			name:    "size mismatch",
			stills:  [][]byte{webptest.Encode(32, 24, []byte{1}), webptest.Encode(16, 24, []byte{2})},
			wantErr: webm.ErrFrameSizeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeStills(context.Background(), tt.stills, cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if data != nil {
				t.Error("expected no data on error")
			}
		})
	}
}

func TestEncodeFiles(t *testing.T) {
	dir := t.TempDir()
	for i, still := range webptest.Frames(3, 32, 24) {
		path := filepath.Join(dir, fmt.Sprintf("frame-%02d.webp", i))
		if err := os.WriteFile(path, still, 0644); err != nil {
			t.Fatalf("failed to write still: %v", err)
		}
	}

	data, err := EncodeFiles(context.Background(), filepath.Join(dir, "*.webp"), NewConfigBuilder().Build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, ebmlMagic) {
		t.Error("expected EBML header")
	}

	_, err = EncodeFiles(context.Background(), filepath.Join(dir, "*.png"), NewConfigBuilder().Build())
	if !errors.Is(err, filesource.ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}
}

package ebml

import (
	"bytes"
	"errors"
	"testing"
)

func TestUintBytes(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{255, []byte{0xFF}},
		{256, []byte{0x01, 0x00}},
		{1000000, []byte{0x0F, 0x42, 0x40}},
		{1<<64 - 1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		got := UintBytes(tt.value)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("UintBytes(%d) = % X, want % X", tt.value, got, tt.want)
		}
	}
}

func TestFixedBytes(t *testing.T) {
	got, err := FixedBytes(5, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 5}
	if !bytes.Equal(got, want) {
		t.Errorf("FixedBytes(5, 8) = % X, want % X", got, want)
	}

	got, err = FixedBytes(0x1234, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0x12, 0x34}) {
		t.Errorf("FixedBytes(0x1234, 2) = % X", got)
	}

	if _, err := FixedBytes(256, 1); !errors.Is(err, ErrSizeOverflow) {
		t.Errorf("expected ErrSizeOverflow for 256 in 1 byte, got %v", err)
	}
	if _, err := FixedBytes(1, 9); !errors.Is(err, ErrSizeOverflow) {
		t.Errorf("expected ErrSizeOverflow for width 9, got %v", err)
	}
}

func TestFloat64Bytes(t *testing.T) {
	got := Float64Bytes(1.5)
	want := []byte{0x3F, 0xF8, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("Float64Bytes(1.5) = % X, want % X", got, want)
	}
}

func TestVintSize_Minimal(t *testing.T) {
	tests := []struct {
		length uint64
		want   []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x81}},
		{126, []byte{0xFE}},
		{127, []byte{0x40, 0x7F}},
		{128, []byte{0x40, 0x80}},
		{16382, []byte{0x7F, 0xFE}},
		{16383, []byte{0x20, 0x3F, 0xFF}},
		{1<<21 - 2, []byte{0x3F, 0xFF, 0xFE}},
		{1<<21 - 1, []byte{0x10, 0x1F, 0xFF, 0xFF}},
		{MaxVintSize, []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}},
	}

	for _, tt := range tests {
		got, err := VintSize(tt.length)
		if err != nil {
			t.Fatalf("VintSize(%d): unexpected error: %v", tt.length, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("VintSize(%d) = % X, want % X", tt.length, got, tt.want)
		}
		n, err := VintSizeLen(tt.length)
		if err != nil {
			t.Fatalf("VintSizeLen(%d): unexpected error: %v", tt.length, err)
		}
		if n != len(tt.want) {
			t.Errorf("VintSizeLen(%d) = %d, want %d", tt.length, n, len(tt.want))
		}
	}
}

func TestVintSize_NeverLongerThanNeeded(t *testing.T) {
	for w := 1; w <= 8; w++ {
		upper := uint64(1)<<(7*uint(w)) - 2
		n, err := VintSizeLen(upper)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != w {
			t.Errorf("length %d: got %d bytes, want %d", upper, n, w)
		}
		if w < 8 {
			n, err := VintSizeLen(upper + 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != w+1 {
				t.Errorf("length %d: got %d bytes, want %d", upper+1, n, w+1)
			}
		}
	}
}

func TestVintSize_Overflow(t *testing.T) {
	if _, err := VintSize(MaxVintSize + 1); !errors.Is(err, ErrSizeOverflow) {
		t.Errorf("expected ErrSizeOverflow, got %v", err)
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter(0)
	w.WriteID(0x4286)
	if err := w.WriteVintSize(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.WriteUint(1)
	w.WriteString("ab")
	if err := w.WriteFixed(7, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.WriteFloat64(0)
	w.WriteBytes([]byte{0xAA})

	want := []byte{0x42, 0x86, 0x81, 0x01, 'a', 'b', 0x00, 0x07, 0, 0, 0, 0, 0, 0, 0, 0, 0xAA}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got % X, want % X", w.Bytes(), want)
	}
	if w.Len() != len(want) {
		t.Errorf("expected Len %d, got %d", len(want), w.Len())
	}
}

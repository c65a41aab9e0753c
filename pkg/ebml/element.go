package ebml

import (
	"fmt"
)

// Kind identifies the payload variant of an Element.
type Kind int

const (
	// KindMaster holds child elements.
	KindMaster Kind = iota
	// KindUint holds an unsigned integer written in minimal width.
	KindUint
	// KindFixedUint holds an unsigned integer written in a fixed width.
	KindFixedUint
	// KindFloat holds an 8-byte double.
	KindFloat
	// KindString holds an ASCII string.
	KindString
	// KindBinary holds opaque bytes.
	KindBinary
	// KindEncoded holds a complete, already rendered element.
	KindEncoded
)

// Element is one node of an EBML tree.
type Element struct {
	ID       uint32
	Kind     Kind
	Children []Element
	Uint     uint64
	Width    int
	Float    float64
	Data     []byte
}

// Master creates a master element with the given children.
func Master(id uint32, children ...Element) Element {
	return Element{ID: id, Kind: KindMaster, Children: children}
}

// Uint creates an unsigned integer element.
func Uint(id uint32, v uint64) Element {
	return Element{ID: id, Kind: KindUint, Uint: v}
}

// FixedUint creates an unsigned integer element that always occupies width bytes.
func FixedUint(id uint32, v uint64, width int) Element {
	return Element{ID: id, Kind: KindFixedUint, Uint: v, Width: width}
}

// Float creates a double-precision float element.
func Float(id uint32, v float64) Element {
	return Element{ID: id, Kind: KindFloat, Float: v}
}

// String creates a string element.
func String(id uint32, s string) Element {
	return Element{ID: id, Kind: KindString, Data: []byte(s)}
}

// Binary creates a binary element.
func Binary(id uint32, b []byte) Element {
	return Element{ID: id, Kind: KindBinary, Data: b}
}

// Encoded wraps bytes produced by an earlier Marshal so they can be placed
// inside a new tree without being rendered again.
func Encoded(b []byte) Element {
	return Element{Kind: KindEncoded, Data: b}
}

// Marshal renders the elements in order into one contiguous byte slice.
// Children are rendered before their parent so the parent's size field is
// known when its header is written.
func Marshal(elements ...Element) ([]byte, error) {
	w := NewWriter(256)
	for _, e := range elements {
		if err := e.render(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (e Element) render(w *Writer) error {
	if e.Kind == KindEncoded {
		w.WriteBytes(e.Data)
		return nil
	}

	payload, err := e.payload()
	if err != nil {
		return fmt.Errorf("element 0x%X: %w", e.ID, err)
	}

	w.WriteID(e.ID)
	if err := w.WriteVintSize(uint64(len(payload))); err != nil {
		return fmt.Errorf("element 0x%X: %w", e.ID, err)
	}
	w.WriteBytes(payload)
	return nil
}

func (e Element) payload() ([]byte, error) {
	switch e.Kind {
	case KindMaster:
		return Marshal(e.Children...)
	case KindUint:
		return UintBytes(e.Uint), nil
	case KindFixedUint:
		return FixedBytes(e.Uint, e.Width)
	case KindFloat:
		return Float64Bytes(e.Float), nil
	case KindString, KindBinary:
		return e.Data, nil
	default:
		return nil, fmt.Errorf("unknown element kind %d", e.Kind)
	}
}

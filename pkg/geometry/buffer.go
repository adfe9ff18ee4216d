package geometry

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

// Element is the set of numeric element types held by staging containers
// and fixed buffers.
type Element interface {
	float32 | uint16 | uint32
}

// Staging is a growable, append-only container used while a mesh is built.
// It is sealed into a [Buffer] at most once; sealing empties it.
type Staging[T Element] struct {
	data []T
}

// Append adds values at the end of the container.
func (s *Staging[T]) Append(v ...T) {
	s.data = append(s.data, v...)
}

// Len returns the number of values held.
func (s *Staging[T]) Len() int {
	return len(s.data)
}

// At returns the value at slot i.
func (s *Staging[T]) At(i int) T {
	return s.data[i]
}

// Set overwrites slot i.
func (s *Staging[T]) Set(i int, v T) {
	s.data[i] = v
}

// Add accumulates v onto slot i.
func (s *Staging[T]) Add(i int, v T) {
	s.data[i] += v
}

// Buffer is an immutable, fixed-length buffer ready for upload. A nil
// *Buffer stands for an attribute channel that was never populated.
type Buffer[T Element] struct {
	data []T
}

// Len returns the number of elements. A nil buffer has length 0.
func (b *Buffer[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// At returns the element at index i.
func (b *Buffer[T]) At(i int) T {
	return b.data[i]
}

// Values returns a copy of the buffer contents.
func (b *Buffer[T]) Values() []T {
	if b == nil {
		return nil
	}
	return slices.Clone(b.data)
}

// ElementSize is the width of one element in bytes. Every member of
// [Element] needs a case here and in Bytes.
func (b *Buffer[T]) ElementSize() int {
	var zero T
	switch any(zero).(type) {
	case uint16:
		return 2
	case float32, uint32:
		return 4
	}
	panic(fmt.Sprintf("geometry: no element size for %T", zero))
}

// ByteSize is the upload size of the buffer in bytes.
func (b *Buffer[T]) ByteSize() int {
	return b.Len() * b.ElementSize()
}

// Bytes encodes the buffer little-endian, the byte order every supported
// graphics API expects for vertex and index data.
func (b *Buffer[T]) Bytes() []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, b.ByteSize())
	switch data := any(b.data).(type) {
	case []float32:
		for i, v := range data {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
	case []uint16:
		for i, v := range data {
			binary.LittleEndian.PutUint16(out[i*2:], v)
		}
	case []uint32:
		for i, v := range data {
			binary.LittleEndian.PutUint32(out[i*4:], v)
		}
	}
	return out
}

// seal copies a staging container into a fixed buffer and releases the
// staging storage. An empty container yields a nil buffer.
func seal[T Element](s *Staging[T]) *Buffer[T] {
	if s.Len() == 0 {
		s.data = nil
		return nil
	}
	b := &Buffer[T]{data: slices.Clone(s.data)}
	s.data = nil
	return b
}

// sealIndices narrows a staging index container to uint16. Values that do
// not fit wrap; the number of such values is returned for reporting.
func sealIndices(s *Staging[uint32]) (*Buffer[uint16], int) {
	if s.Len() == 0 {
		s.data = nil
		return nil, 0
	}
	out := make([]uint16, len(s.data))
	overflow := 0
	for i, v := range s.data {
		if v > math.MaxUint16 {
			overflow++
		}
		out[i] = uint16(v)
	}
	s.data = nil
	return &Buffer[uint16]{data: out}, overflow
}

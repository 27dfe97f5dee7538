package encoder

import (
	"unsafe"
)

// DataType is the element family of a texture payload.
type DataType int

// Payload element families.
const (
	Float DataType = iota // float32 texels
	Byte                  // uint8 texels
	Int                   // uint32 texels
)

// String returns the data type name.
func (d DataType) String() string {
	switch d {
	case Float:
		return "float"
	case Byte:
		return "byte"
	case Int:
		return "int"
	default:
		return "unknown"
	}
}

// Array is a flat numeric buffer exchanged with a texture.
// It is one of Float32Array, Uint8Array or Uint32Array.
type Array interface {
	Len() int
	DataType() DataType
	// Bytes reinterprets the elements as raw little-endian bytes without copying.
	Bytes() []byte
}

// Float32Array holds float texels.
type Float32Array []float32

// Uint8Array holds byte texels.
type Uint8Array []uint8

// Uint32Array holds 32-bit integer texels.
type Uint32Array []uint32

// Len returns the number of elements.
func (a Float32Array) Len() int { return len(a) }

// DataType returns Float.
func (a Float32Array) DataType() DataType { return Float }

// Bytes returns the backing memory as bytes.
func (a Float32Array) Bytes() []byte {
	if len(a) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy upload of the backing array
	return unsafe.Slice((*byte)(unsafe.Pointer(&a[0])), len(a)*4)
}

// Len returns the number of elements.
func (a Uint8Array) Len() int { return len(a) }

// DataType returns Byte.
func (a Uint8Array) DataType() DataType { return Byte }

// Bytes returns the array itself.
func (a Uint8Array) Bytes() []byte { return a }

// Len returns the number of elements.
func (a Uint32Array) Len() int { return len(a) }

// DataType returns Int.
func (a Uint32Array) DataType() DataType { return Int }

// Bytes returns the backing memory as bytes.
func (a Uint32Array) Bytes() []byte {
	if len(a) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy upload of the backing array
	return unsafe.Slice((*byte)(unsafe.Pointer(&a[0])), len(a)*4)
}

// toFloat32 converts any array to float32 element-wise.
func toFloat32(src Array) Float32Array {
	switch s := src.(type) {
	case Float32Array:
		return s
	case Uint8Array:
		out := make(Float32Array, len(s))
		for i, v := range s {
			out[i] = float32(v)
		}
		return out
	case Uint32Array:
		out := make(Float32Array, len(s))
		for i, v := range s {
			out[i] = float32(v)
		}
		return out
	default:
		return nil
	}
}

package tensor

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Tensor is an immutable description of a graph value: element type, shape
// and, for constants, the little-endian raw contents.
//
// The element count always equals the product of the shape.
type Tensor struct {
	dtype DataType
	shape Shape
	size  int
	data  []byte
}

// New creates a shaped tensor without contents.
func New(dtype DataType, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	return &Tensor{
		dtype: dtype,
		shape: shape.Clone(),
		size:  shape.NumElements(),
	}, nil
}

// FromBytes creates a tensor backed by raw little-endian data.
// The data length must match the tensor's byte size.
func FromBytes(dtype DataType, shape Shape, data []byte) (*Tensor, error) {
	t, err := New(dtype, shape)
	if err != nil {
		return nil, err
	}
	if len(data) != t.ByteSize() {
		return nil, errors.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, t.ByteSize(), len(data))
	}
	t.data = make([]byte, len(data))
	copy(t.data, data)
	return t, nil
}

// FromFloat32 creates a float32 tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return FromBytes(Float32, shape, raw)
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	return t.size
}

// ByteSize returns the total memory size in bytes.
func (t *Tensor) ByteSize() int {
	return t.size * t.dtype.Size()
}

// HasData reports whether the tensor carries constant contents.
func (t *Tensor) HasData() bool {
	return t.data != nil
}

// Data returns a copy of the raw contents, or nil for shape-only tensors.
func (t *Tensor) Data() []byte {
	if t.data == nil {
		return nil
	}
	out := make([]byte, len(t.data))
	copy(out, t.data)
	return out
}

// Float32s decodes the contents of a float32 tensor.
func (t *Tensor) Float32s() ([]float32, error) {
	if t.dtype != Float32 {
		return nil, errors.Errorf("tensor dtype is %s, not float32", t.dtype)
	}
	if t.data == nil {
		return nil, errors.New("tensor has no data")
	}
	out := make([]float32, t.size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.data[i*4:]))
	}
	return out, nil
}

// String returns a short description such as "float32[2,2]".
func (t *Tensor) String() string {
	return t.dtype.String() + t.shape.String()
}

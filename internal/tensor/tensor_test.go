package tensor

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
		name  string
	}{
		{Bool, 1, "bool"},
		{Int8, 1, "int8"},
		{Uint8, 1, "uint8"},
		{Int16, 2, "int16"},
		{Uint16, 2, "uint16"},
		{Int32, 4, "int32"},
		{Uint32, 4, "uint32"},
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
		{String, 1, "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.dtype.Size())
			assert.Equal(t, tt.name, tt.dtype.String())
		})
	}
}

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 0, Shape{2, 0, 3}.NumElements())
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{0, 4}.Validate())
	require.Error(t, Shape{2, -1}.Validate())
}

func TestShapeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, "[2,3,4]", Shape{2, 3, 4}.String())
}

func TestNewTensorSizeMatchesShape(t *testing.T) {
	tt, err := New(Float32, Shape{2, 2})
	require.NoError(t, err)

	assert.Equal(t, 4, tt.Size())
	assert.Equal(t, 16, tt.ByteSize())
	assert.False(t, tt.HasData())
	assert.Nil(t, tt.Data())
	assert.Equal(t, "float32[2,2]", tt.String())
}

func TestTensorShapeIsCopied(t *testing.T) {
	shape := Shape{2, 3}
	tt, err := New(Int32, shape)
	require.NoError(t, err)

	shape[0] = 9
	got := tt.Shape()
	got[1] = 9

	assert.Equal(t, Shape{2, 3}, tt.Shape())
}

func TestFromFloat32(t *testing.T) {
	tt, err := FromFloat32([]float32{1, -2, 3.5, 0}, Shape{2, 2})
	require.NoError(t, err)
	require.True(t, tt.HasData())

	values, err := tt.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 3.5, 0}, values)

	_, err = FromFloat32([]float32{1, 2, 3}, Shape{2, 2})
	require.Error(t, err)
}

func TestFromBytesLengthMismatch(t *testing.T) {
	_, err := FromBytes(Uint16, Shape{3}, []byte{1, 2, 3})
	require.Error(t, err)

	tt, err := FromBytes(Uint16, Shape{3}, []byte{1, 0, 2, 0, 3, 0})
	require.NoError(t, err)
	_, err = tt.Float32s()
	require.Error(t, err)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func TestErrorsCarryStack(t *testing.T) {
	_, err := New(Float32, Shape{2, -1})
	require.Error(t, err)
	assert.Implements(t, (*stackTracer)(nil), err)
	assert.Contains(t, err.Error(), "invalid shape")
	assert.Implements(t, (*stackTracer)(nil), errors.Cause(err))

	_, err = FromBytes(Uint16, Shape{3}, []byte{1, 2, 3})
	require.Error(t, err)
	assert.Implements(t, (*stackTracer)(nil), err)

	_, err = FromFloat32([]float32{1}, Shape{2})
	require.Error(t, err)
	assert.Implements(t, (*stackTracer)(nil), err)
}

package native

import (
	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/tensor"
)

// CType returns the C element type used for a tensor data type.
func CType(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Bool, tensor.String:
		return "char", nil
	case tensor.Int8:
		return "int8_t", nil
	case tensor.Uint8:
		return "uint8_t", nil
	case tensor.Int16:
		return "int16_t", nil
	case tensor.Uint16:
		return "uint16_t", nil
	case tensor.Int32:
		return "int32_t", nil
	case tensor.Uint32:
		return "uint32_t", nil
	case tensor.Float32:
		return "float", nil
	case tensor.Float64:
		return "double", nil
	default:
		return "", errors.Errorf("native: unknown data type %s", dt)
	}
}

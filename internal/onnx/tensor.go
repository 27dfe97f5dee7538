package onnx

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/tensor"
)

// ErrUnsupportedType is returned for element types the compiler has no
// texture representation for.
var ErrUnsupportedType = errors.New("unsupported element type")

// protoTypeToTensorType maps an ONNX element type. 64-bit integers are
// narrowed to 32 bits since GLSL has no 64-bit integer type.
func protoTypeToTensorType(onnxType int32) (tensor.DataType, error) {
	switch onnxType {
	case TensorProtoFloat:
		return tensor.Float32, nil
	case TensorProtoDouble:
		return tensor.Float64, nil
	case TensorProtoUint8:
		return tensor.Uint8, nil
	case TensorProtoInt8:
		return tensor.Int8, nil
	case TensorProtoUint16:
		return tensor.Uint16, nil
	case TensorProtoInt16:
		return tensor.Int16, nil
	case TensorProtoInt32, TensorProtoInt64:
		return tensor.Int32, nil
	case TensorProtoUint32, TensorProtoUint64:
		return tensor.Uint32, nil
	case TensorProtoBool:
		return tensor.Bool, nil
	case TensorProtoString:
		return tensor.String, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedType, "onnx type %d", onnxType)
	}
}

func protoShape(dims []int64) tensor.Shape {
	shape := make(tensor.Shape, len(dims))
	for i, dim := range dims {
		shape[i] = int(dim)
	}
	return shape
}

// tensorFromProto converts an initializer to a tensor carrying its contents.
// String tensors keep only their shape.
func tensorFromProto(proto *TensorProto) (*tensor.Tensor, error) {
	dtype, err := protoTypeToTensorType(proto.DataType)
	if err != nil {
		return nil, err
	}
	shape := protoShape(proto.Dims)
	if dtype == tensor.String {
		return tensor.New(dtype, shape)
	}

	raw, err := protoContents(proto, dtype, shape.NumElements())
	if err != nil {
		return nil, err
	}
	return tensor.FromBytes(dtype, shape, raw)
}

// protoContents returns the little-endian contents of the populated data
// field, converted to the layout of dtype.
func protoContents(proto *TensorProto, dtype tensor.DataType, count int) ([]byte, error) {
	elemSize := dtype.Size()
	out := make([]byte, count*elemSize)

	//nolint:gocritic // ifElseChain: checking mutually exclusive data fields.
	if len(proto.RawData) > 0 {
		wide := proto.DataType == TensorProtoInt64 || proto.DataType == TensorProtoUint64
		if !wide {
			if len(proto.RawData) != len(out) {
				return nil, errors.Errorf("raw data has %d bytes, want %d", len(proto.RawData), len(out))
			}
			copy(out, proto.RawData)
			return out, nil
		}
		if len(proto.RawData) != count*8 {
			return nil, errors.Errorf("raw data has %d bytes, want %d", len(proto.RawData), count*8)
		}
		for i := 0; i < count; i++ {
			v := int64(binary.LittleEndian.Uint64(proto.RawData[i*8:]))
			if err := putNarrowed(out[i*4:], v); err != nil {
				return nil, err
			}
		}
	} else if len(proto.FloatData) > 0 {
		if len(proto.FloatData) != count {
			return nil, errors.Errorf("float_data has %d elements, want %d", len(proto.FloatData), count)
		}
		for i, v := range proto.FloatData {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
	} else if len(proto.DoubleData) > 0 {
		if len(proto.DoubleData) != count {
			return nil, errors.Errorf("double_data has %d elements, want %d", len(proto.DoubleData), count)
		}
		for i, v := range proto.DoubleData {
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
		}
	} else if len(proto.Int64Data) > 0 {
		if len(proto.Int64Data) != count {
			return nil, errors.Errorf("int64_data has %d elements, want %d", len(proto.Int64Data), count)
		}
		for i, v := range proto.Int64Data {
			if err := putNarrowed(out[i*4:], v); err != nil {
				return nil, err
			}
		}
	} else if len(proto.Int32Data) > 0 {
		if len(proto.Int32Data) != count {
			return nil, errors.Errorf("int32_data has %d elements, want %d", len(proto.Int32Data), count)
		}
		for i, v := range proto.Int32Data {
			switch elemSize {
			case 1:
				out[i] = byte(v)
			case 2:
				binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
			default:
				binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
			}
		}
	} else if count > 0 {
		return nil, errors.New("tensor has no data")
	}
	return out, nil
}

func putNarrowed(dst []byte, v int64) error {
	if v < math.MinInt32 || v > math.MaxUint32 {
		return errors.Errorf("value %d does not fit in 32 bits", v)
	}
	binary.LittleEndian.PutUint32(dst, uint32(v))
	return nil
}

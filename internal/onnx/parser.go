package onnx

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireType is returned when a known field arrives with an unexpected
// protobuf wire type.
var ErrWireType = errors.New("unexpected wire type")

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	model, err := decodeModel(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse model")
	}
	return model, nil
}

// decoder walks the fields of one message. The first error stops the walk
// and is kept in err; read helpers return zero values once it is set.
type decoder struct {
	b   []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func newDecoder(b []byte) *decoder {
	return &decoder{b: b}
}

// next advances to the next field tag.
func (d *decoder) next() bool {
	if d.err != nil || len(d.b) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.err = errors.Wrap(protowire.ParseError(n), "tag")
		return false
	}
	d.num, d.typ = num, typ
	d.b = d.b[n:]
	return true
}

func (d *decoder) fail(err error) {
	if d.err == nil && err != nil {
		d.err = errors.Wrapf(err, "field %d", d.num)
	}
}

// consumed advances past n bytes, or records the protowire error n encodes.
func (d *decoder) consumed(n int) bool {
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return false
	}
	d.b = d.b[n:]
	return true
}

func (d *decoder) expect(typ protowire.Type) bool {
	if d.err != nil {
		return false
	}
	if d.typ != typ {
		d.fail(errors.Wrapf(ErrWireType, "got %d, want %d", d.typ, typ))
		return false
	}
	return true
}

func (d *decoder) skip() {
	d.consumed(protowire.ConsumeFieldValue(d.num, d.typ, d.b))
}

func (d *decoder) varint() int64 {
	if !d.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.b)
	if !d.consumed(n) {
		return 0
	}
	return int64(v)
}

func (d *decoder) float32() float32 {
	if !d.expect(protowire.Fixed32Type) {
		return 0
	}
	v, n := protowire.ConsumeFixed32(d.b)
	if !d.consumed(n) {
		return 0
	}
	return math.Float32frombits(v)
}

func (d *decoder) bytes() []byte {
	if !d.expect(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.b)
	if !d.consumed(n) {
		return nil
	}
	return v
}

func (d *decoder) string() string {
	return string(d.bytes())
}

// int64s appends a repeated varint field in packed or unpacked form.
func (d *decoder) int64s(dst []int64) []int64 {
	if d.typ != protowire.BytesType {
		return append(dst, d.varint())
	}
	packed := d.bytes()
	for len(packed) > 0 && d.err == nil {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			d.fail(protowire.ParseError(n))
			break
		}
		dst = append(dst, int64(v))
		packed = packed[n:]
	}
	return dst
}

// float32s appends a repeated float field in packed or unpacked form.
func (d *decoder) float32s(dst []float32) []float32 {
	if d.typ != protowire.BytesType {
		return append(dst, d.float32())
	}
	packed := d.bytes()
	for len(packed) > 0 && d.err == nil {
		v, n := protowire.ConsumeFixed32(packed)
		if n < 0 {
			d.fail(protowire.ParseError(n))
			break
		}
		dst = append(dst, math.Float32frombits(v))
		packed = packed[n:]
	}
	return dst
}

// float64s appends a repeated double field in packed or unpacked form.
func (d *decoder) float64s(dst []float64) []float64 {
	if d.typ != protowire.BytesType {
		if !d.expect(protowire.Fixed64Type) {
			return dst
		}
		v, n := protowire.ConsumeFixed64(d.b)
		if d.consumed(n) {
			dst = append(dst, math.Float64frombits(v))
		}
		return dst
	}
	packed := d.bytes()
	for len(packed) > 0 && d.err == nil {
		v, n := protowire.ConsumeFixed64(packed)
		if n < 0 {
			d.fail(protowire.ParseError(n))
			break
		}
		dst = append(dst, math.Float64frombits(v))
		packed = packed[n:]
	}
	return dst
}

func decodeModel(b []byte) (*ModelProto, error) {
	m := &ModelProto{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // ir_version
			m.IRVersion = d.varint()
		case 2: // producer_name
			m.ProducerName = d.string()
		case 3: // producer_version
			m.ProducerVersion = d.string()
		case 4: // domain
			m.Domain = d.string()
		case 5: // model_version
			m.ModelVersion = d.varint()
		case 6: // doc_string
			m.DocString = d.string()
		case 7: // graph
			g, err := decodeGraph(d.bytes())
			d.fail(errors.Wrap(err, "graph"))
			m.Graph = g
		case 8: // opset_import
			opset, err := decodeOperatorSetID(d.bytes())
			d.fail(errors.Wrap(err, "opset_import"))
			m.OpsetImport = append(m.OpsetImport, opset)
		case 14: // metadata_props
			entry, err := decodeStringStringEntry(d.bytes())
			d.fail(errors.Wrap(err, "metadata_props"))
			m.MetadataProps = append(m.MetadataProps, entry)
		default:
			d.skip()
		}
	}
	return m, d.err
}

func decodeGraph(b []byte) (*GraphProto, error) {
	g := &GraphProto{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // node
			node, err := decodeNode(d.bytes())
			d.fail(errors.Wrapf(err, "node %d", len(g.Nodes)))
			g.Nodes = append(g.Nodes, node)
		case 2: // name
			g.Name = d.string()
		case 5: // initializer
			t, err := decodeTensor(d.bytes())
			d.fail(errors.Wrap(err, "initializer"))
			g.Initializers = append(g.Initializers, t)
		case 11: // input
			v, err := decodeValueInfo(d.bytes())
			d.fail(errors.Wrap(err, "input"))
			g.Inputs = append(g.Inputs, v)
		case 12: // output
			v, err := decodeValueInfo(d.bytes())
			d.fail(errors.Wrap(err, "output"))
			g.Outputs = append(g.Outputs, v)
		case 13: // value_info
			v, err := decodeValueInfo(d.bytes())
			d.fail(errors.Wrap(err, "value_info"))
			g.ValueInfo = append(g.ValueInfo, v)
		default:
			d.skip()
		}
	}
	return g, d.err
}

func decodeNode(b []byte) (NodeProto, error) {
	var n NodeProto
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // input
			n.Inputs = append(n.Inputs, d.string())
		case 2: // output
			n.Outputs = append(n.Outputs, d.string())
		case 3: // name
			n.Name = d.string()
		case 4: // op_type
			n.OpType = d.string()
		case 5: // attribute
			attr, err := decodeAttribute(d.bytes())
			d.fail(errors.Wrap(err, "attribute"))
			n.Attributes = append(n.Attributes, attr)
		case 7: // domain
			n.Domain = d.string()
		default:
			d.skip()
		}
	}
	return n, d.err
}

func decodeTensor(b []byte) (TensorProto, error) {
	var t TensorProto
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // dims
			t.Dims = d.int64s(t.Dims)
		case 2: // data_type
			t.DataType = int32(d.varint())
		case 4: // float_data
			t.FloatData = d.float32s(t.FloatData)
		case 5: // int32_data
			for _, v := range d.int64s(nil) {
				t.Int32Data = append(t.Int32Data, int32(v))
			}
		case 6: // string_data
			t.StringData = append(t.StringData, d.bytes())
		case 7: // int64_data
			t.Int64Data = d.int64s(t.Int64Data)
		case 8: // name
			t.Name = d.string()
		case 9: // raw_data
			t.RawData = d.bytes()
		case 10: // double_data
			t.DoubleData = d.float64s(t.DoubleData)
		default:
			d.skip()
		}
	}
	return t, d.err
}

func decodeValueInfo(b []byte) (ValueInfoProto, error) {
	var v ValueInfoProto
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // name
			v.Name = d.string()
		case 2: // type
			typ, err := decodeType(d.bytes())
			d.fail(errors.Wrap(err, "type"))
			v.Type = typ
		default:
			d.skip()
		}
	}
	return v, d.err
}

func decodeType(b []byte) (*TypeProto, error) {
	t := &TypeProto{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // tensor_type
			tt, err := decodeTensorType(d.bytes())
			d.fail(errors.Wrap(err, "tensor_type"))
			t.TensorType = tt
		default:
			d.skip()
		}
	}
	return t, d.err
}

func decodeTensorType(b []byte) (*TensorTypeProto, error) {
	t := &TensorTypeProto{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // elem_type
			t.ElemType = int32(d.varint())
		case 2: // shape
			shape, err := decodeTensorShape(d.bytes())
			d.fail(errors.Wrap(err, "shape"))
			t.Shape = shape
		default:
			d.skip()
		}
	}
	return t, d.err
}

func decodeTensorShape(b []byte) (*TensorShapeProto, error) {
	s := &TensorShapeProto{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // dim
			dim, err := decodeDimension(d.bytes())
			d.fail(errors.Wrap(err, "dim"))
			s.Dims = append(s.Dims, dim)
		default:
			d.skip()
		}
	}
	return s, d.err
}

func decodeDimension(b []byte) (DimensionProto, error) {
	var dim DimensionProto
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // dim_value
			dim.DimValue = d.varint()
			dim.HasValue = true
		case 2: // dim_param
			dim.DimParam = d.string()
		default:
			d.skip()
		}
	}
	return dim, d.err
}

func decodeAttribute(b []byte) (AttributeProto, error) {
	var a AttributeProto
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // name
			a.Name = d.string()
		case 2: // f
			a.F = d.float32()
		case 3: // i
			a.I = d.varint()
		case 4: // s
			a.S = d.bytes()
		case 7: // floats
			a.Floats = d.float32s(a.Floats)
		case 8: // ints
			a.Ints = d.int64s(a.Ints)
		case 9: // strings
			a.Strings = append(a.Strings, d.bytes())
		case 20: // type
			a.Type = int32(d.varint())
		default:
			// t, g, tensors, graphs, doc_string
			d.skip()
		}
	}
	return a, d.err
}

func decodeOperatorSetID(b []byte) (OperatorSetID, error) {
	var o OperatorSetID
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // domain
			o.Domain = d.string()
		case 2: // version
			o.Version = d.varint()
		default:
			d.skip()
		}
	}
	return o, d.err
}

func decodeStringStringEntry(b []byte) (StringStringEntry, error) {
	var e StringStringEntry
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1: // key
			e.Key = d.string()
		case 2: // value
			e.Value = d.string()
		default:
			d.skip()
		}
	}
	return e, d.err
}

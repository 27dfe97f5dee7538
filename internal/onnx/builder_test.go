package onnx

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Helpers that hand-assemble ONNX messages on the wire.

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendFloat(b []byte, num protowire.Number, f float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(f))
}

func appendPackedInts(b []byte, num protowire.Number, vs ...int64) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	return appendMessage(b, num, packed)
}

func appendPackedFloats(b []byte, num protowire.Number, vs ...float32) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	return appendMessage(b, num, packed)
}

// valueInfo builds a ValueInfoProto. Negative dims become symbolic.
func valueInfo(name string, elemType int32, dims ...int64) []byte {
	var shape []byte
	for _, d := range dims {
		var dim []byte
		if d < 0 {
			dim = appendString(dim, 2, "N")
		} else {
			dim = appendVarint(dim, 1, d)
		}
		shape = appendMessage(shape, 1, dim)
	}
	var tt []byte
	tt = appendVarint(tt, 1, int64(elemType))
	tt = appendMessage(tt, 2, shape)
	var typ []byte
	typ = appendMessage(typ, 1, tt)

	var b []byte
	b = appendString(b, 1, name)
	return appendMessage(b, 2, typ)
}

func nodeMsg(name, opType string, inputs, outputs []string, attrs ...[]byte) []byte {
	var b []byte
	for _, in := range inputs {
		b = appendString(b, 1, in)
	}
	for _, out := range outputs {
		b = appendString(b, 2, out)
	}
	if name != "" {
		b = appendString(b, 3, name)
	}
	b = appendString(b, 4, opType)
	for _, a := range attrs {
		b = appendMessage(b, 5, a)
	}
	return b
}

func floatAttr(name string, f float32, typed bool) []byte {
	var b []byte
	b = appendString(b, 1, name)
	b = appendFloat(b, 2, f)
	if typed {
		b = appendVarint(b, 20, AttributeProtoFloat)
	}
	return b
}

func floatInitializer(name string, dims []int64, data []float32) []byte {
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	var b []byte
	b = appendPackedInts(b, 1, dims...)
	b = appendVarint(b, 2, TensorProtoFloat)
	b = appendString(b, 8, name)
	b = appendMessage(b, 9, raw)
	return b
}

type graphParts struct {
	name         string
	nodes        [][]byte
	inputs       [][]byte
	outputs      [][]byte
	initializers [][]byte
	valueInfo    [][]byte
}

func (p graphParts) bytes() []byte {
	var b []byte
	for _, n := range p.nodes {
		b = appendMessage(b, 1, n)
	}
	if p.name != "" {
		b = appendString(b, 2, p.name)
	}
	for _, t := range p.initializers {
		b = appendMessage(b, 5, t)
	}
	for _, v := range p.inputs {
		b = appendMessage(b, 11, v)
	}
	for _, v := range p.outputs {
		b = appendMessage(b, 12, v)
	}
	for _, v := range p.valueInfo {
		b = appendMessage(b, 13, v)
	}
	return b
}

func modelBytes(opsetVersion int64, g graphParts) []byte {
	var opset []byte
	opset = appendString(opset, 1, "")
	opset = appendVarint(opset, 2, opsetVersion)

	var b []byte
	b = appendVarint(b, 1, 7)
	b = appendString(b, 2, "glcompute-test")
	b = appendString(b, 3, "0.1")
	b = appendMessage(b, 7, g.bytes())
	b = appendMessage(b, 8, opset)
	return b
}

// reluModel is Y = Relu(X) over a float32[1,4].
func reluModel() []byte {
	return modelBytes(6, graphParts{
		name:    "relu",
		nodes:   [][]byte{nodeMsg("relu0", "Relu", []string{"X"}, []string{"Y"})},
		inputs:  [][]byte{valueInfo("X", TensorProtoFloat, 1, 4)},
		outputs: [][]byte{valueInfo("Y", TensorProtoFloat, 1, 4)},
	})
}

package onnx_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/born-ml/glcompute/internal/logging"
	"github.com/born-ml/glcompute/onnx"
)

func init() {
	logging.SetOutput(io.Discard)
}

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

// floatValue encodes a float32 ValueInfoProto with static dims.
func floatValue(name string, dims ...int64) []byte {
	var shape []byte
	for _, d := range dims {
		shape = appendMessage(shape, 1, appendVarint(nil, 1, d))
	}
	tt := appendVarint(nil, 1, 1)
	tt = appendMessage(tt, 2, shape)
	b := appendString(nil, 1, name)
	return appendMessage(b, 2, appendMessage(nil, 1, tt))
}

func node(name, opType string, inputs []string, output string) []byte {
	var b []byte
	for _, in := range inputs {
		b = appendString(b, 1, in)
	}
	b = appendString(b, 2, output)
	b = appendString(b, 3, name)
	return appendString(b, 4, opType)
}

// chainModel is Y = Relu(Neg(X)) with the nodes stored out of order.
func chainModel(opsetVersion int64) []byte {
	var g []byte
	g = appendMessage(g, 1, node("relu0", "Relu", []string{"H"}, "Y"))
	g = appendMessage(g, 1, node("neg0", "Neg", []string{"X"}, "H"))
	g = appendString(g, 2, "chain")
	g = appendMessage(g, 11, floatValue("X", 2, 2))
	g = appendMessage(g, 12, floatValue("Y", 2, 2))
	g = appendMessage(g, 13, floatValue("H", 2, 2))

	opset := appendVarint(nil, 2, opsetVersion)
	m := appendVarint(nil, 1, 7)
	m = appendString(m, 2, "glcompute-test")
	m = appendMessage(m, 7, g)
	return appendMessage(m, 8, opset)
}

func TestLoadFromBytes(t *testing.T) {
	model, err := onnx.LoadFromBytes(chainModel(6))
	require.NoError(t, err)

	assert.Equal(t, "chain", model.Name())
	assert.Equal(t, 2, model.NodeCount())
	assert.Equal(t, int64(6), model.OpsetVersion())
	assert.Equal(t, []string{"Neg", "Relu"}, model.Operators())
}

func TestCompile(t *testing.T) {
	model, err := onnx.LoadFromBytes(chainModel(6))
	require.NoError(t, err)

	opts := onnx.DefaultCompileOptions()
	opts.Prefix = "chain"
	artifact, err := model.Compile(opts)
	require.NoError(t, err)

	assert.Equal(t, "chain.h", artifact.HeaderName)
	assert.Contains(t, artifact.Header, "GLuint fragShader_0_neg0;")
	assert.Contains(t, artifact.Header, "GLuint fragShader_1_relu0;")
	assert.Contains(t, artifact.Header, "int chain_init(chain_Context *ctx);")
	assert.Contains(t, artifact.Source, `#include "chain.h"`)
	assert.Contains(t, artifact.Source, "GL_LINK_STATUS")
	assert.Contains(t, artifact.Source, `\u000a`)

	opts.StandardEscapes = true
	artifact, err = model.Compile(opts)
	require.NoError(t, err)
	assert.NotContains(t, artifact.Source, `\u000a`)
	assert.Contains(t, artifact.Source, `\n`)
}

func TestCompileWebGL1(t *testing.T) {
	model, err := onnx.LoadFromBytes(chainModel(6))
	require.NoError(t, err)

	opts := onnx.DefaultCompileOptions()
	opts.Version = 1
	_, err = model.Compile(opts)
	require.NoError(t, err)

	opts.Version = 3
	_, err = model.Compile(opts)
	require.Error(t, err)
}

func TestCompileUnsupportedOpset(t *testing.T) {
	// Relu and Neg both start at opset 6.
	model, err := onnx.LoadFromBytes(chainModel(5))
	require.NoError(t, err)

	_, err = model.Compile(onnx.DefaultCompileOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot resolve operator")
}

func TestLoadAndInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.onnx")
	require.NoError(t, os.WriteFile(path, chainModel(6), 0o600))

	model, err := onnx.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, model.NodeCount())

	info, err := onnx.GetModelInfo(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, info.InputNames)
	assert.Equal(t, []string{"Y"}, info.OutputNames)
	assert.Equal(t, "glcompute-test", info.ProducerName)

	_, err = onnx.Load(filepath.Join(t.TempDir(), "missing.onnx"))
	require.Error(t, err)
}

func TestListSupportedOps(t *testing.T) {
	ops := onnx.ListSupportedOps()
	assert.Contains(t, ops, "Relu")
	assert.Contains(t, ops, "MatMul")
	assert.IsIncreasing(t, ops)
}

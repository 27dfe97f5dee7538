package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/born-ml/glcompute/internal/logging"
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

// writeReluModel writes Y = Relu(X) over float32[4] and returns its path.
func writeReluModel(t *testing.T) string {
	t.Helper()
	dim := appendMessage(nil, 1, appendVarint(nil, 1, 4))
	tt := appendVarint(nil, 1, 1)
	tt = appendMessage(tt, 2, dim)
	x := appendString(nil, 1, "X")
	x = appendMessage(x, 2, appendMessage(nil, 1, tt))

	node := appendString(nil, 1, "X")
	node = appendString(node, 2, "Y")
	node = appendString(node, 4, "Relu")

	g := appendMessage(nil, 1, node)
	g = appendString(g, 2, "relu")
	g = appendMessage(g, 11, x)

	m := appendVarint(nil, 1, 7)
	m = appendMessage(m, 7, g)
	m = appendMessage(m, 8, appendVarint(nil, 2, 6))

	path := filepath.Join(t.TempDir(), "relu.onnx")
	require.NoError(t, os.WriteFile(path, m, 0o600))
	return path
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "glcompute "+version+"\n", out.String())
}

func TestRunUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	err := run([]string{"serve"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "serve"`)
}

func TestRunOps(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"ops"}, &out))

	table := out.String()
	assert.Contains(t, table, "| Operator | WebGL Backend |")
	assert.Contains(t, table, "| Relu | 6+ |")
	assert.Contains(t, table, "| Clip | 6+ |")
	assert.Contains(t, table, "| MatMul | 1-8, 9+ |")
	assert.Contains(t, table, "| Conv |  |")
}

func TestRunInfo(t *testing.T) {
	path := writeReluModel(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"info", path}, &out))
	assert.Contains(t, out.String(), "Opset:       6")
	assert.Contains(t, out.String(), "Operators:   Relu")

	require.Error(t, run([]string{"info"}, &out))
}

func TestRunCompile(t *testing.T) {
	path := writeReluModel(t)
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run([]string{"compile", "-prefix", "relu", "-o", dir, path}, &out))

	header, err := os.ReadFile(filepath.Join(dir, "relu.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "#ifndef RELU_H")
	assert.Contains(t, string(header), "float *value_0;")

	source, err := os.ReadFile(filepath.Join(dir, "relu.c"))
	require.NoError(t, err)
	assert.Contains(t, string(source), "relu_compileShader(GL_FRAGMENT_SHADER")
	assert.Contains(t, out.String(), filepath.Join(dir, "relu.c"))
}

func TestRunCompileStandardEscapes(t *testing.T) {
	path := writeReluModel(t)
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run([]string{"compile", "-std-escapes", "-prefix", "relu", "-o", dir, path}, &out))

	source, err := os.ReadFile(filepath.Join(dir, "relu.c"))
	require.NoError(t, err)
	assert.Contains(t, string(source), `#version 300 es\n`)
	assert.NotContains(t, string(source), `\u000a`)
}

func TestRunCompileErrors(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run([]string{"compile"}, &out))
	require.Error(t, run([]string{"compile", "-webgl", "3", writeReluModel(t)}, &out))
	require.Error(t, run([]string{"compile", "-bogus", "x.onnx"}, &out))
	require.Error(t, run([]string{"compile", filepath.Join(t.TempDir(), "missing.onnx")}, &out))
}

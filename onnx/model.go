package onnx

import (
	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/backend/webgl"
	"github.com/born-ml/glcompute/internal/compiler"
	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/native"
)

// Model represents a loaded ONNX model ready to be compiled.
//
// The model holds the static computation graph converted from the ONNX
// file. Use Compile to turn it into a native GL harness.
type Model interface {
	// Name returns the graph name stored in the model.
	Name() string

	// NodeCount returns the number of operator nodes.
	NodeCount() int

	// OpsetVersion returns the declared version of the default domain,
	// or 0 when the model imports none.
	OpsetVersion() int64

	// Operators returns the distinct op types in execution order.
	Operators() []string

	// Compile generates one fragment kernel per node and emits the C
	// harness that builds them at run time.
	//
	// Example:
	//
	//	artifact, err := model.Compile(onnx.DefaultCompileOptions())
	//	if err != nil {
	//	    log.Fatal(err)
	//	}
	//	os.WriteFile(artifact.HeaderName, []byte(artifact.Header), 0o644)
	Compile(opts CompileOptions) (*Artifact, error)
}

// Artifact is an emitted C harness: a header and its source.
type Artifact = native.Artifact

// CompileOptions configures Model.Compile.
type CompileOptions struct {
	// Prefix starts every emitted C identifier.
	Prefix string
	// Version selects the WebGL capability level (1 or 2).
	Version int
	// MaxTextureSize caps texture edges below the device limit; 0 keeps it.
	MaxTextureSize int
	// VerifyShaders compiles every kernel on the device before emitting.
	VerifyShaders bool
	// StandardEscapes embeds shader text with \n and \" escapes instead of
	// \uNNNN, so the source builds with gcc or clang as emitted.
	StandardEscapes bool
}

// DefaultCompileOptions returns the options used by the CLI.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		Prefix:        "model",
		Version:       2,
		VerifyShaders: true,
	}
}

type model struct {
	graph *graph.Graph
}

func (m *model) Name() string {
	return m.graph.Name
}

func (m *model) NodeCount() int {
	return len(m.graph.Nodes)
}

func (m *model) OpsetVersion() int64 {
	v, _ := m.graph.Opset(graph.DefaultDomain)
	return v
}

func (m *model) Operators() []string {
	seen := make(map[string]bool)
	var ops []string
	for _, n := range m.graph.Nodes {
		if !seen[n.OpType] {
			seen[n.OpType] = true
			ops = append(ops, n.OpType)
		}
	}
	return ops
}

// Compile runs against a headless device: shaders are translated and
// validated, and nothing has to be rendered to emit the harness.
func (m *model) Compile(opts CompileOptions) (*Artifact, error) {
	device, err := webgl.OpenHeadless()
	if err != nil {
		return nil, err
	}
	defer device.Close()

	ctx, err := webgl.NewContext(device, opts.Version, webgl.WithMaxTextureSize(opts.MaxTextureSize))
	if err != nil {
		return nil, err
	}
	defer ctx.Dispose()

	copts := compiler.DefaultOptions()
	copts.VerifyShaders = opts.VerifyShaders
	cg, err := compiler.Compile(m.graph, ctx, copts)
	if err != nil {
		return nil, errors.Wrapf(err, "compile %q", m.graph.Name)
	}
	p := cg.Program(opts.Prefix)
	p.StandardEscapes = opts.StandardEscapes
	return native.Emit(p)
}

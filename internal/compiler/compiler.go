// Package compiler turns a graph into an ordered list of GPU kernels and a
// flat byte layout of its values, and can serialize the result into a
// native harness.
//
// Nodes are compiled in the order given; the compiler never reorders them.
package compiler

import (
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/backend/webgl"
	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/logging"
	"github.com/born-ml/glcompute/internal/native"
	"github.com/born-ml/glcompute/internal/operators"
	"github.com/born-ml/glcompute/internal/shadergen"
	"github.com/born-ml/glcompute/internal/tensor"
)

var log = logging.For("compiler")

// ErrUnknownShape is returned when a node input has no static shape.
var ErrUnknownShape = errors.New("compiler: value shape unknown")

// Options configures compilation.
type Options struct {
	// Registry resolves nodes to operators.
	Registry *operators.Registry
	// VerifyShaders compiles every generated shader on the device and
	// releases it again.
	VerifyShaders bool
}

// DefaultOptions returns options with the built-in operator table.
func DefaultOptions() Options {
	return Options{
		Registry: operators.NewRegistry(),
	}
}

// KernelOp is the compiled kernel of one node.
type KernelOp struct {
	Index   int
	Node    *graph.Node
	Program *shadergen.ProgramInfo
	Source  string // GLSL ES fragment shader
	WGSL    string
}

// ComputeGraph is a compiled graph.
type ComputeGraph struct {
	Graph   *graph.Graph
	Vertex  *shadergen.Source
	Kernels []KernelOp
	Layout  Layout
}

// Compile resolves and compiles every node of g, then assembles the layout.
func Compile(g *graph.Graph, ctx *webgl.Context, opts Options) (*ComputeGraph, error) {
	if g == nil {
		return nil, errors.New("compiler: nil graph")
	}
	if ctx == nil {
		return nil, errors.New("compiler: nil context")
	}
	if opts.Registry == nil {
		opts.Registry = operators.NewRegistry()
	}

	vertex, err := shadergen.VertexShader()
	if err != nil {
		return nil, errors.Wrap(err, "compiler: vertex shader")
	}

	cg := &ComputeGraph{
		Graph:   g,
		Vertex:  vertex,
		Kernels: make([]KernelOp, 0, len(g.Nodes)),
	}
	for i, node := range g.Nodes {
		if node == nil {
			return nil, errors.Errorf("compiler: node %d is nil", i)
		}
		k, err := compileNode(g, ctx, opts.Registry, i, node)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d (%s)", i, node.Label())
		}
		cg.Kernels = append(cg.Kernels, k)
	}

	cg.Layout = NewLayout(g.Values)

	if opts.VerifyShaders {
		if err := cg.verify(ctx); err != nil {
			return nil, err
		}
	}

	log.WithField("graph", g.Name).Debugf("compiled %d kernels, %d bytes of parameters", len(cg.Kernels), cg.Layout.Total)
	return cg, nil
}

func compileNode(g *graph.Graph, ctx *webgl.Context, reg *operators.Registry, index int, node *graph.Node) (KernelOp, error) {
	op, err := reg.Resolve(node, g.Opsets)
	if err != nil {
		return KernelOp{}, err
	}
	if err := op.Initialize(node.Attributes); err != nil {
		return KernelOp{}, err
	}

	inputs := make([]*tensor.Tensor, len(node.Inputs))
	for i, idx := range node.Inputs {
		v, err := g.Value(idx)
		if err != nil {
			return KernelOp{}, err
		}
		if v.Tensor == nil {
			return KernelOp{}, errors.Wrapf(ErrUnknownShape, "input %d (value %d %q)", i, idx, v.Name)
		}
		inputs[i] = v.Tensor
	}

	info, err := op.CreateProgramInfo(ctx, inputs)
	if err != nil {
		return KernelOp{}, err
	}
	src, err := shadergen.NewPreprocessor(ctx, info).Preprocess()
	if err != nil {
		return KernelOp{}, err
	}

	log.WithField("node", node.Label()).Debug("kernel generated")
	return KernelOp{
		Index:   index,
		Node:    node,
		Program: info,
		Source:  src.GLSL,
		WGSL:    src.WGSL,
	}, nil
}

// verify builds every kernel into a device program and releases it.
func (cg *ComputeGraph) verify(ctx *webgl.Context) error {
	vs, err := ctx.CompileShader(cg.Vertex.WGSL, gputypes.ShaderStageVertex)
	if err != nil {
		return err
	}
	defer ctx.DeleteShader(vs)

	for _, k := range cg.Kernels {
		fs, err := ctx.CompileShader(k.WGSL, gputypes.ShaderStageFragment)
		if err != nil {
			return errors.Wrapf(err, "kernel %d (%s)", k.Index, k.Node.Label())
		}
		prog, err := ctx.CreateProgram(vs, fs)
		if err != nil {
			ctx.DeleteShader(fs)
			return err
		}
		ctx.DeleteProgram(prog)
		ctx.DeleteShader(fs)
	}
	return nil
}

// Native serializes the compiled graph into a C harness whose identifiers
// start with prefix.
func (cg *ComputeGraph) Native(prefix string) (*native.Artifact, error) {
	return native.Emit(cg.Program(prefix))
}

// Program returns the in-memory harness for the compiled graph.
func (cg *ComputeGraph) Program(prefix string) *native.Program {
	p := &native.Program{
		Prefix:     prefix,
		Vertex:     cg.Vertex.GLSL,
		Kernels:    make([]native.Kernel, len(cg.Kernels)),
		ParamsSize: cg.Layout.Total,
	}
	for i, k := range cg.Kernels {
		p.Kernels[i] = native.Kernel{Name: k.Node.Name, Source: k.Source}
	}
	for i, v := range cg.Graph.Values {
		if v == nil || v.Tensor == nil {
			continue
		}
		p.Values = append(p.Values, native.Value{
			Index:  i,
			DType:  v.Tensor.DType(),
			Offset: cg.Layout.Offsets[i],
		})
	}
	return p
}

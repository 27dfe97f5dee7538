package operators

import (
	"fmt"
	"math"

	"github.com/born-ml/glcompute/internal/backend/webgl"
	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/opset"
	"github.com/born-ml/glcompute/internal/shadergen"
	"github.com/born-ml/glcompute/internal/tensor"
)

// elementwise applies a WGSL expression of x to every element.
type elementwise struct {
	name string
	expr func(attrs graph.Attributes) string
	// attrs is set by Initialize
	attrs graph.Attributes
}

func (e *elementwise) Initialize(attrs graph.Attributes) error {
	e.attrs = attrs
	return nil
}

func (e *elementwise) CreateProgramInfo(_ *webgl.Context, inputs []*tensor.Tensor) (*shadergen.ProgramInfo, error) {
	if err := checkInputs(e.name, inputs, 1); err != nil {
		return nil, err
	}
	shape := inputs[0].Shape()
	return &shadergen.ProgramInfo{
		Name:        e.name,
		Inputs:      []shadergen.Input{{Name: "x", Shape: shape}},
		OutputShape: shape,
		Body:        fmt.Sprintf("let x = get_x(index);\nreturn %s;", e.expr(e.attrs)),
	}, nil
}

func fixed(expr string) func(graph.Attributes) string {
	return func(graph.Attributes) string { return expr }
}

func (r *Registry) unary(opType string, minVersion int64, expr func(graph.Attributes) string) {
	r.register(opType, minVersion, opset.Unbounded, func() Operator {
		return &elementwise{name: opType, expr: expr}
	})
}

func (r *Registry) registerUnary() {
	r.unary("Abs", 6, fixed("abs(x)"))
	r.unary("Ceil", 6, fixed("ceil(x)"))
	r.unary("Cos", 7, fixed("cos(x)"))
	r.unary("Exp", 6, fixed("exp(x)"))
	r.unary("Floor", 6, fixed("floor(x)"))
	r.unary("Identity", 1, fixed("x"))
	r.unary("Log", 6, fixed("log(x)"))
	r.unary("Neg", 6, fixed("-x"))
	r.unary("Reciprocal", 6, fixed("1.0 / x"))
	r.unary("Sin", 7, fixed("sin(x)"))
	r.unary("Sqrt", 6, fixed("sqrt(x)"))
	r.unary("Tan", 7, fixed("tan(x)"))
}

func (r *Registry) registerActivations() {
	r.unary("Relu", 6, fixed("max(x, 0.0)"))
	r.unary("Sigmoid", 6, fixed("1.0 / (1.0 + exp(-x))"))
	r.unary("Tanh", 6, fixed("tanh(x)"))
	r.unary("LeakyRelu", 6, func(a graph.Attributes) string {
		alpha := shadergen.Float(a.Float("alpha", 0.01))
		return fmt.Sprintf("select(%s * x, x, x >= 0.0)", alpha)
	})
	r.unary("Elu", 6, func(a graph.Attributes) string {
		alpha := shadergen.Float(a.Float("alpha", 1.0))
		return fmt.Sprintf("select(%s * (exp(x) - 1.0), x, x >= 0.0)", alpha)
	})
	// From opset 11 the bounds are inputs rather than attributes.
	r.register("Clip", 6, 10, func() Operator {
		return &elementwise{name: "Clip", expr: func(a graph.Attributes) string {
			lo := shadergen.Float(a.Float("min", -math.MaxFloat32))
			hi := shadergen.Float(a.Float("max", math.MaxFloat32))
			return fmt.Sprintf("clamp(x, %s, %s)", lo, hi)
		}}
	})
}

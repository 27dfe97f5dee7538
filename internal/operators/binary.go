package operators

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/backend/webgl"
	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/opset"
	"github.com/born-ml/glcompute/internal/shadergen"
	"github.com/born-ml/glcompute/internal/tensor"
)

// binaryOp combines two tensors element by element. Operands must have
// equal shapes, or one of them must hold a single element.
type binaryOp struct {
	name    string
	combine string // format with the two operands
}

func (b *binaryOp) Initialize(graph.Attributes) error {
	return nil
}

func (b *binaryOp) CreateProgramInfo(_ *webgl.Context, inputs []*tensor.Tensor) (*shadergen.ProgramInfo, error) {
	if err := checkInputs(b.name, inputs, 2); err != nil {
		return nil, err
	}
	a, c := inputs[0], inputs[1]

	lhs, rhs := "get_a(index)", "get_b(index)"
	out := a.Shape()
	switch {
	case a.Shape().Equal(c.Shape()):
	case c.Size() == 1:
		rhs = "get_b(0)"
		// Two single-element operands broadcast to the higher rank.
		if a.Size() == 1 && len(c.Shape()) > len(out) {
			out = c.Shape()
		}
	case a.Size() == 1:
		lhs = "get_a(0)"
		out = c.Shape()
	default:
		return nil, errors.Wrapf(ErrInvalidInput, "%s: incompatible shapes %s and %s", b.name, a.Shape(), c.Shape())
	}

	return &shadergen.ProgramInfo{
		Name: b.name,
		Inputs: []shadergen.Input{
			{Name: "a", Shape: a.Shape()},
			{Name: "b", Shape: c.Shape()},
		},
		OutputShape: out,
		Body:        "return " + fmt.Sprintf(b.combine, lhs, rhs) + ";",
	}, nil
}

func (r *Registry) binary(opType, combine string) {
	r.register(opType, 7, opset.Unbounded, func() Operator {
		return &binaryOp{name: opType, combine: combine}
	})
}

func (r *Registry) registerBinary() {
	r.binary("Add", "%s + %s")
	r.binary("Sub", "%s - %s")
	r.binary("Mul", "%s * %s")
	r.binary("Div", "%s / %s")
	r.binary("Pow", "pow(%s, %s)")
}

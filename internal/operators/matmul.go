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

// matMul multiplies an [M,K] matrix by a [K,N] matrix.
type matMul struct{}

func (m *matMul) Initialize(graph.Attributes) error {
	return nil
}

func (m *matMul) CreateProgramInfo(_ *webgl.Context, inputs []*tensor.Tensor) (*shadergen.ProgramInfo, error) {
	if err := checkInputs("MatMul", inputs, 2); err != nil {
		return nil, err
	}
	a, b := inputs[0].Shape(), inputs[1].Shape()
	if len(a) != 2 || len(b) != 2 {
		return nil, errors.Wrapf(ErrInvalidInput, "MatMul: rank-2 operands required, got %s and %s", a, b)
	}
	if a[1] != b[0] {
		return nil, errors.Wrapf(ErrInvalidInput, "MatMul: inner dimensions differ: %s x %s", a, b)
	}
	k, n := a[1], b[1]

	body := fmt.Sprintf(`let row = index / %[2]d;
let col = index %% %[2]d;
var sum: f32 = 0.0;
for (var k: i32 = 0; k < %[1]d; k = k + 1) {
    sum = sum + get_a(row * %[1]d + k) * get_b(k * %[2]d + col);
}
return sum;`, k, n)

	return &shadergen.ProgramInfo{
		Name: "MatMul",
		Inputs: []shadergen.Input{
			{Name: "a", Shape: a},
			{Name: "b", Shape: b},
		},
		OutputShape: tensor.Shape{a[0], n},
		Body:        body,
	}, nil
}

func (r *Registry) registerMatMul() {
	r.register("MatMul", 1, opset.Unbounded, func() Operator { return &matMul{} })
}

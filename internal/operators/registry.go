// Package operators implements graph operators as GPU kernels and holds the
// versioned resolution table that maps ONNX node types to them.
package operators

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/backend/webgl"
	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/opset"
	"github.com/born-ml/glcompute/internal/shadergen"
	"github.com/born-ml/glcompute/internal/tensor"
)

// ErrInvalidInput is returned when an operator receives inputs it cannot handle.
var ErrInvalidInput = errors.New("operators: invalid input")

// Operator produces a kernel description for one node.
type Operator interface {
	// Initialize configures the operator from node attributes.
	Initialize(attrs graph.Attributes) error
	// CreateProgramInfo describes the kernel for the given input tensors.
	CreateProgramInfo(ctx *webgl.Context, inputs []*tensor.Tensor) (*shadergen.ProgramInfo, error)
}

// Rule is one entry of the resolution table.
type Rule = opset.Rule[Operator]

// Registry holds the resolution table. Rules are matched in table order.
type Registry struct {
	rules []Rule
}

// NewRegistry creates a registry with every supported operator.
func NewRegistry() *Registry {
	r := &Registry{}

	r.registerUnary()
	r.registerActivations()
	r.registerBinary()
	r.registerMatMul()

	return r
}

// Register appends a rule. Earlier rules take precedence.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

func (r *Registry) register(opType string, minVersion, maxVersion int64, ctor func() Operator) {
	r.Register(Rule{OpType: opType, MinVersion: minVersion, MaxVersion: maxVersion, New: ctor})
}

// Resolve constructs the operator for node under the declared opsets.
func (r *Registry) Resolve(node *graph.Node, opsets []graph.OpsetID) (Operator, error) {
	return opset.Resolve(node, opsets, r.rules)
}

// Rules returns a copy of the resolution table.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// SupportedOps returns the sorted operator types with at least one rule.
func (r *Registry) SupportedOps() []string {
	seen := make(map[string]bool, len(r.rules))
	ops := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		if !seen[rule.OpType] {
			seen[rule.OpType] = true
			ops = append(ops, rule.OpType)
		}
	}
	sort.Strings(ops)
	return ops
}

// checkInputs validates the input count and that every tensor is numeric.
func checkInputs(op string, inputs []*tensor.Tensor, want int) error {
	if len(inputs) != want {
		return errors.Wrapf(ErrInvalidInput, "%s requires %d input(s), got %d", op, want, len(inputs))
	}
	for i, t := range inputs {
		if t == nil {
			return errors.Wrapf(ErrInvalidInput, "%s: input %d is nil", op, i)
		}
		if t.DType() == tensor.String {
			return errors.Wrapf(ErrInvalidInput, "%s: input %d has type %s", op, i, t.DType())
		}
	}
	return nil
}

// Package graph defines the static computation graph consumed by the compiler:
// nodes referencing values by index, values optionally carrying tensors, and
// the opsets the model was built against.
package graph

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/tensor"
)

// DefaultDomain is the canonical name of the standard ONNX operator domain.
// The empty domain is treated as an alias.
const DefaultDomain = "ai.onnx"

// OpsetID names an operator set and the version a model declares for it.
type OpsetID struct {
	Domain  string
	Version int64
}

// Value is a node input/output slot. Its identity is its index in
// Graph.Values. Tensor is nil when the shape is only known at run time.
type Value struct {
	Name   string
	Tensor *tensor.Tensor
}

// Node is one operator invocation.
type Node struct {
	Name       string     // Node name (optional)
	OpType     string     // Operation type (e.g., "Relu", "MatMul")
	Domain     string     // Operator domain (empty for default)
	Inputs     []int      // Input value indices
	Outputs    []int      // Output value indices
	Attributes Attributes // Operation attributes
}

// Graph is an ordered list of nodes over an ordered list of values.
// Node order is execution order.
type Graph struct {
	Name   string
	Nodes  []*Node
	Values []*Value
	Opsets []OpsetID
}

// Value returns the value at index i.
func (g *Graph) Value(i int) (*Value, error) {
	if i < 0 || i >= len(g.Values) {
		return nil, errors.Errorf("value index %d out of range [0, %d)", i, len(g.Values))
	}
	return g.Values[i], nil
}

// Opset returns the declared version for a domain.
func (g *Graph) Opset(domain string) (int64, bool) {
	for _, o := range g.Opsets {
		if SameDomain(o.Domain, domain) {
			return o.Version, true
		}
	}
	return 0, false
}

// SameDomain reports whether two domain names refer to the same operator set.
func SameDomain(a, b string) bool {
	return NormalizeDomain(a) == NormalizeDomain(b)
}

// NormalizeDomain maps the empty domain to DefaultDomain.
func NormalizeDomain(d string) string {
	if d == "" {
		return DefaultDomain
	}
	return d
}

// Label returns a human readable identifier for the node.
func (n *Node) Label() string {
	if n.Name != "" {
		return fmt.Sprintf("%s (%s)", n.Name, n.OpType)
	}
	return n.OpType
}

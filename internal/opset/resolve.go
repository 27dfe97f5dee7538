// Package opset resolves graph nodes to operator implementations through a
// declarative table of versioned rules.
package opset

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/graph"
)

// Unbounded marks a rule without an upper version limit.
const Unbounded int64 = -1

// ErrUnsupportedOperator is returned when no rule matches a node.
var ErrUnsupportedOperator = errors.New("opset: unsupported operator")

// Rule maps an operator type and an inclusive opset version range to a
// constructor.
type Rule[T any] struct {
	OpType     string
	Domain     string // empty means the default ONNX domain
	MinVersion int64
	MaxVersion int64 // Unbounded for no upper limit
	New        func() T
}

// Contains reports whether version lies in the rule's range.
func (r Rule[T]) Contains(version int64) bool {
	if version < r.MinVersion {
		return false
	}
	return r.MaxVersion == Unbounded || version <= r.MaxVersion
}

// Resolve constructs the operator for node from the first rule, in table
// order, whose type matches and whose range contains the version declared
// for its domain.
func Resolve[T any](node *graph.Node, opsets []graph.OpsetID, rules []Rule[T]) (T, error) {
	var zero T
	if node == nil {
		return zero, errors.New("opset: nil node")
	}

	for _, rule := range rules {
		if rule.OpType != node.OpType || !graph.SameDomain(rule.Domain, node.Domain) {
			continue
		}
		for _, set := range opsets {
			if graph.SameDomain(set.Domain, rule.Domain) && rule.Contains(set.Version) {
				return rule.New(), nil
			}
		}
	}

	return zero, errors.Wrapf(ErrUnsupportedOperator, "cannot resolve operator %q with opsets: %s",
		node.OpType, describe(opsets))
}

func describe(opsets []graph.OpsetID) string {
	if len(opsets) == 0 {
		return "none"
	}
	parts := make([]string, len(opsets))
	for i, set := range opsets {
		parts[i] = fmt.Sprintf("%s v%d", graph.NormalizeDomain(set.Domain), set.Version)
	}
	return strings.Join(parts, ", ")
}

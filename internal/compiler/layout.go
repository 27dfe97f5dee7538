package compiler

import (
	"github.com/born-ml/glcompute/internal/graph"
)

// Layout places every graph value in one contiguous parameter buffer.
// Offsets has one entry per value, in value order. A value without a tensor
// occupies zero bytes.
type Layout struct {
	Offsets []int
	Total   int
}

// NewLayout computes the layout in a single left-to-right pass.
func NewLayout(values []*graph.Value) Layout {
	l := Layout{Offsets: make([]int, len(values))}
	off := 0
	for i, v := range values {
		l.Offsets[i] = off
		if v != nil && v.Tensor != nil {
			off += v.Tensor.ByteSize()
		}
	}
	l.Total = off
	return l
}

// Size returns the number of bytes reserved for value i.
func (l Layout) Size(i int) int {
	if i < 0 || i >= len(l.Offsets) {
		return 0
	}
	if i == len(l.Offsets)-1 {
		return l.Total - l.Offsets[i]
	}
	return l.Offsets[i+1] - l.Offsets[i]
}

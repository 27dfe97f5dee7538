package opset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/glcompute/internal/graph"
)

func reluRules() []Rule[string] {
	return []Rule[string]{
		{OpType: "Relu", MinVersion: 1, MaxVersion: 5, New: func() string { return "A" }},
		{OpType: "Relu", MinVersion: 6, MaxVersion: Unbounded, New: func() string { return "B" }},
	}
}

func opsets(version int64) []graph.OpsetID {
	return []graph.OpsetID{{Domain: "", Version: version}}
}

func TestResolveVersionMatching(t *testing.T) {
	rules := reluRules()
	node := &graph.Node{OpType: "Relu"}

	tests := []struct {
		version int64
		want    string
	}{
		{1, "A"},
		{3, "A"},
		{5, "A"},
		{6, "B"},
		{13, "B"},
	}
	for _, tt := range tests {
		got, err := Resolve(node, opsets(tt.version), rules)
		require.NoError(t, err, "version %d", tt.version)
		assert.Equal(t, tt.want, got, "version %d", tt.version)
	}
}

func TestResolveUnsupported(t *testing.T) {
	rules := reluRules()

	_, err := Resolve(&graph.Node{OpType: "Relu"}, opsets(0), rules)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = Resolve(&graph.Node{OpType: "Unknown"}, opsets(6), rules)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), `"Unknown"`)
	assert.Contains(t, err.Error(), "ai.onnx v6")

	_, err = Resolve(&graph.Node{OpType: "Relu"}, nil, rules)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestResolveFirstMatchWins(t *testing.T) {
	rules := []Rule[string]{
		{OpType: "Add", MinVersion: 7, MaxVersion: Unbounded, New: func() string { return "first" }},
		{OpType: "Add", MinVersion: 1, MaxVersion: Unbounded, New: func() string { return "second" }},
	}

	got, err := Resolve(&graph.Node{OpType: "Add"}, opsets(8), rules)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = Resolve(&graph.Node{OpType: "Add"}, opsets(6), rules)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestResolveDomains(t *testing.T) {
	rules := []Rule[string]{
		{OpType: "Relu", Domain: "", MinVersion: 6, MaxVersion: Unbounded, New: func() string { return "onnx" }},
		{OpType: "Gelu", Domain: "com.example", MinVersion: 1, MaxVersion: Unbounded, New: func() string { return "custom" }},
	}

	// Empty and explicit default domain are interchangeable.
	got, err := Resolve(&graph.Node{OpType: "Relu"}, []graph.OpsetID{{Domain: "ai.onnx", Version: 7}}, rules)
	require.NoError(t, err)
	assert.Equal(t, "onnx", got)

	got, err = Resolve(&graph.Node{OpType: "Relu", Domain: "ai.onnx"}, opsets(7), rules)
	require.NoError(t, err)
	assert.Equal(t, "onnx", got)

	// A custom domain needs its own opset import.
	node := &graph.Node{OpType: "Gelu", Domain: "com.example"}
	_, err = Resolve(node, opsets(7), rules)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	got, err = Resolve(node, []graph.OpsetID{{Domain: "", Version: 7}, {Domain: "com.example", Version: 1}}, rules)
	require.NoError(t, err)
	assert.Equal(t, "custom", got)
}

func TestResolveConstructsFreshInstances(t *testing.T) {
	type op struct{ n int }
	rules := []Rule[*op]{
		{OpType: "Relu", MinVersion: 1, MaxVersion: Unbounded, New: func() *op { return &op{} }},
	}
	node := &graph.Node{OpType: "Relu"}

	a, err := Resolve(node, opsets(6), rules)
	require.NoError(t, err)
	b, err := Resolve(node, opsets(6), rules)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

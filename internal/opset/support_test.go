package opset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSupport(t *testing.T) {
	rules := []Rule[string]{
		{OpType: "Relu", MinVersion: 4, MaxVersion: 6, New: func() string { return "" }},
		{OpType: "Relu", MinVersion: 8, MaxVersion: Unbounded, New: func() string { return "" }},
	}

	assert.True(t, CheckSupport("Relu", Range{4, 6}, rules))
	assert.True(t, CheckSupport("Relu", Range{8, 10}, rules))
	assert.False(t, CheckSupport("Relu", Range{6, 8}, rules))
	assert.False(t, CheckSupport("Relu", Range{1, 3}, rules))
	assert.False(t, CheckSupport("Tanh", Range{8, 10}, rules))
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "4-6", FormatRange(Range{4, 6}, true, false))
	assert.Equal(t, "5", FormatRange(Range{5, 5}, true, false))
	assert.Equal(t, "8+", FormatRange(Range{8, 10}, true, true))
	assert.Equal(t, "", FormatRange(Range{1, 3}, false, false))
}

func TestSupportTable(t *testing.T) {
	rules := []Rule[string]{
		{OpType: "Relu", MinVersion: 6, MaxVersion: Unbounded, New: func() string { return "" }},
		{OpType: "Clip", MinVersion: 6, MaxVersion: 10, New: func() string { return "" }},
	}
	schemas := map[string][]int64{
		"Relu": {6, 1},
		"Clip": {1, 6, 11},
		"Conv": {1},
	}

	rows := SupportTable(schemas, 12, rules)

	assert.Equal(t, []SupportRow{
		{OpType: "Clip", Ranges: []string{"6-10"}},
		{OpType: "Conv"},
		{OpType: "Relu", Ranges: []string{"6+"}},
	}, rows)
}

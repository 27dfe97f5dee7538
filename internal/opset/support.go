package opset

import (
	"sort"
	"strconv"

	"github.com/born-ml/glcompute/internal/graph"
)

// Range is an inclusive span of opset versions.
type Range struct {
	From int64
	To   int64
}

// CheckSupport reports whether opType resolves at every version in r.
// No operator is constructed.
func CheckSupport[T any](opType string, r Range, rules []Rule[T]) bool {
	node := &graph.Node{OpType: opType}
	for v := r.From; v <= r.To; v++ {
		if !resolvable(node, v, rules) {
			return false
		}
	}
	return true
}

func resolvable[T any](node *graph.Node, version int64, rules []Rule[T]) bool {
	for _, rule := range rules {
		if rule.OpType == node.OpType && graph.SameDomain(rule.Domain, node.Domain) && rule.Contains(version) {
			return true
		}
	}
	return false
}

// FormatRange renders a supported range: "4-6", "5", or "8+" for the last
// range of an operator. Unsupported ranges render empty.
func FormatRange(r Range, supported, last bool) string {
	switch {
	case !supported:
		return ""
	case last:
		return strconv.FormatInt(r.From, 10) + "+"
	case r.From == r.To:
		return strconv.FormatInt(r.From, 10)
	default:
		return strconv.FormatInt(r.From, 10) + "-" + strconv.FormatInt(r.To, 10)
	}
}

// SupportRow is one operator of a compatibility matrix.
type SupportRow struct {
	OpType string
	Ranges []string // supported ranges, in version order
}

// SupportTable probes rules against the schema history of each operator.
// schemas maps an op type to the opset versions that introduced a new
// definition; the last definition extends to maxVersion.
func SupportTable[T any](schemas map[string][]int64, maxVersion int64, rules []Rule[T]) []SupportRow {
	opTypes := make([]string, 0, len(schemas))
	for op := range schemas {
		opTypes = append(opTypes, op)
	}
	sort.Strings(opTypes)

	rows := make([]SupportRow, 0, len(opTypes))
	for _, op := range opTypes {
		versions := append([]int64(nil), schemas[op]...)
		sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

		row := SupportRow{OpType: op}
		for i, from := range versions {
			last := i == len(versions)-1
			r := Range{From: from, To: maxVersion}
			if !last {
				r.To = versions[i+1] - 1
			}
			if desc := FormatRange(r, CheckSupport(op, r, rules), last); desc != "" {
				row.Ranges = append(row.Ranges, desc)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

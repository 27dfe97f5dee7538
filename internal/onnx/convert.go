package onnx

import (
	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/tensor"
)

// Conversion errors.
var (
	ErrNoGraph      = errors.New("model has no graph")
	ErrUnknownValue = errors.New("unknown value")
)

// ToGraph converts a parsed model into a graph.Graph. Values are ordered
// graph inputs, initializers, value_info entries and finally node outputs
// not declared before. Node order is kept as stored.
func ToGraph(model *ModelProto) (*graph.Graph, error) {
	if model == nil || model.Graph == nil {
		return nil, ErrNoGraph
	}
	gp := model.Graph
	b := newGraphBuilder(gp.Name)

	for _, o := range model.OpsetImport {
		b.g.Opsets = append(b.g.Opsets, graph.OpsetID{Domain: o.Domain, Version: o.Version})
	}

	for i := range gp.Inputs {
		if err := b.declare(&gp.Inputs[i]); err != nil {
			return nil, errors.Wrapf(err, "input %q", gp.Inputs[i].Name)
		}
	}
	for i := range gp.Initializers {
		init := &gp.Initializers[i]
		t, err := tensorFromProto(init)
		if err != nil {
			return nil, errors.Wrapf(err, "initializer %q", init.Name)
		}
		b.define(init.Name, t)
	}
	for i := range gp.ValueInfo {
		if err := b.declare(&gp.ValueInfo[i]); err != nil {
			return nil, errors.Wrapf(err, "value_info %q", gp.ValueInfo[i].Name)
		}
	}
	for i := range gp.Outputs {
		// Outputs refine node results declared below, so only the type is
		// recorded here.
		if err := b.refine(&gp.Outputs[i]); err != nil {
			return nil, errors.Wrapf(err, "output %q", gp.Outputs[i].Name)
		}
	}

	for i := range gp.Nodes {
		node, err := b.node(&gp.Nodes[i])
		if err != nil {
			return nil, errors.Wrapf(err, "node %d (%s)", i, gp.Nodes[i].OpType)
		}
		b.g.Nodes = append(b.g.Nodes, node)
	}
	return b.g, nil
}

type graphBuilder struct {
	g       *graph.Graph
	index   map[string]int
	outputs map[string]*tensor.Tensor
}

func newGraphBuilder(name string) *graphBuilder {
	return &graphBuilder{
		g:       &graph.Graph{Name: name},
		index:   make(map[string]int),
		outputs: make(map[string]*tensor.Tensor),
	}
}

// set adds a value, or fills in the tensor of an existing shapeless one.
func (b *graphBuilder) set(name string, t *tensor.Tensor) int {
	if i, ok := b.index[name]; ok {
		if b.g.Values[i].Tensor == nil {
			b.g.Values[i].Tensor = t
		}
		return i
	}
	b.index[name] = len(b.g.Values)
	b.g.Values = append(b.g.Values, &graph.Value{Name: name, Tensor: t})
	return len(b.g.Values) - 1
}

// define adds a value or replaces the tensor of an existing one. Initializer
// contents take precedence over a shape-only input declaration.
func (b *graphBuilder) define(name string, t *tensor.Tensor) {
	i := b.set(name, t)
	b.g.Values[i].Tensor = t
}

func (b *graphBuilder) declare(info *ValueInfoProto) error {
	t, err := valueTensor(info)
	if err != nil {
		return err
	}
	b.set(info.Name, t)
	return nil
}

func (b *graphBuilder) refine(info *ValueInfoProto) error {
	t, err := valueTensor(info)
	if err != nil {
		return err
	}
	if t != nil {
		b.outputs[info.Name] = t
	}
	return nil
}

func (b *graphBuilder) node(proto *NodeProto) (*graph.Node, error) {
	node := &graph.Node{
		Name:       proto.Name,
		OpType:     proto.OpType,
		Domain:     proto.Domain,
		Attributes: convertAttributes(proto.Attributes),
	}

	inputs := trimOptional(proto.Inputs)
	for _, name := range inputs {
		if name == "" {
			return nil, errors.New("omitted optional input before a present one")
		}
		i, ok := b.index[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownValue, "input %q", name)
		}
		node.Inputs = append(node.Inputs, i)
	}
	for _, name := range proto.Outputs {
		if name == "" {
			continue
		}
		node.Outputs = append(node.Outputs, b.set(name, b.outputs[name]))
	}
	return node, nil
}

// trimOptional drops trailing empty input names, which mark omitted
// optional inputs.
func trimOptional(names []string) []string {
	n := len(names)
	for n > 0 && names[n-1] == "" {
		n--
	}
	return names[:n]
}

// valueTensor returns a shape-only tensor for fully static value infos and
// nil when the type or any dimension is only known at run time.
func valueTensor(info *ValueInfoProto) (*tensor.Tensor, error) {
	if info.Type == nil || info.Type.TensorType == nil {
		return nil, nil
	}
	tt := info.Type.TensorType
	if tt.Shape == nil {
		return nil, nil
	}
	dims := make([]int64, len(tt.Shape.Dims))
	for i, d := range tt.Shape.Dims {
		if !d.HasValue || d.DimValue < 0 {
			return nil, nil
		}
		dims[i] = d.DimValue
	}
	dtype, err := protoTypeToTensorType(tt.ElemType)
	if err != nil {
		return nil, err
	}
	return tensor.New(dtype, protoShape(dims))
}

func convertAttributes(protos []AttributeProto) graph.Attributes {
	attrs := make(graph.Attributes, 0, len(protos))
	for i := range protos {
		p := &protos[i]
		typ := attributeType(p)
		if typ == graph.AttrUndefined {
			log.WithField("attribute", p.Name).Debug("skipping tensor or graph attribute")
			continue
		}
		attrs = append(attrs, graph.Attribute{
			Name:    p.Name,
			Type:    typ,
			F:       p.F,
			I:       p.I,
			S:       p.S,
			Floats:  p.Floats,
			Ints:    p.Ints,
			Strings: p.Strings,
		})
	}
	return attrs
}

// attributeType returns the declared type, or infers it from the populated
// field for models written before the type field existed.
func attributeType(p *AttributeProto) graph.AttributeType {
	switch p.Type {
	case AttributeProtoFloat, AttributeProtoInt, AttributeProtoString,
		AttributeProtoFloats, AttributeProtoInts, AttributeProtoStrings:
		return graph.AttributeType(p.Type)
	case AttributeProtoUndefined:
	default:
		return graph.AttrUndefined
	}
	switch {
	case len(p.Floats) > 0:
		return graph.AttrFloats
	case len(p.Ints) > 0:
		return graph.AttrInts
	case len(p.Strings) > 0:
		return graph.AttrStrings
	case p.S != nil:
		return graph.AttrString
	case p.F != 0:
		return graph.AttrFloat
	default:
		return graph.AttrInt
	}
}

// topologicalSort sorts nodes in execution order.
// Ensures dependencies are executed before dependents.
func topologicalSort(nodes []NodeProto) []NodeProto {
	outputToNode := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			outputToNode[output] = i
		}
	}

	visited := make([]bool, len(nodes))
	result := make([]NodeProto, 0, len(nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true

		for _, input := range nodes[i].Inputs {
			if depIdx, ok := outputToNode[input]; ok {
				visit(depIdx)
			}
		}

		result = append(result, nodes[i])
	}

	for i := range nodes {
		visit(i)
	}

	return result
}

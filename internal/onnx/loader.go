package onnx

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/glcompute/internal/graph"
	"github.com/born-ml/glcompute/internal/logging"
)

var log = logging.For("onnx")

// LoadOptions configures model loading behavior.
type LoadOptions struct {
	// SortNodes orders nodes so every producer runs before its consumers.
	// The compiler keeps node order as given.
	SortNodes bool
}

// DefaultLoadOptions returns default loading options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		SortNodes: true,
	}
}

// Load reads an ONNX model from file and converts it to a graph.
//
// Example:
//
//	g, err := onnx.Load("relu.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load(path string, opts ...LoadOptions) (*graph.Graph, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	proto, err := ParseFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ONNX file")
	}
	return LoadFromProto(proto, opt)
}

// LoadFromBytes converts an ONNX model held in memory.
func LoadFromBytes(data []byte, opts ...LoadOptions) (*graph.Graph, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	proto, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ONNX data")
	}
	return LoadFromProto(proto, opt)
}

// LoadFromProto converts a parsed model.
func LoadFromProto(proto *ModelProto, opt LoadOptions) (*graph.Graph, error) {
	if proto == nil || proto.Graph == nil {
		return nil, ErrNoGraph
	}
	if opt.SortNodes {
		sorted := *proto
		g := *proto.Graph
		g.Nodes = topologicalSort(g.Nodes)
		sorted.Graph = &g
		proto = &sorted
	}

	g, err := ToGraph(proto)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert graph")
	}
	log.WithFields(logrus.Fields{
		"graph":    g.Name,
		"nodes":    len(g.Nodes),
		"values":   len(g.Values),
		"producer": proto.ProducerName,
	}).Debug("loaded model")
	return g, nil
}

// ModelInfo contains basic information about an ONNX model without converting it.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	InputNames      []string
	OutputNames     []string
	Operators       []string // distinct op types in node order
	NodeCount       int
	WeightCount     int
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Info(proto), nil
}

// Info summarizes a parsed model.
func Info(proto *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:       proto.IRVersion,
		ProducerName:    proto.ProducerName,
		ProducerVersion: proto.ProducerVersion,
	}

	for _, opset := range proto.OpsetImport {
		if graph.SameDomain(opset.Domain, graph.DefaultDomain) {
			info.OpsetVersion = opset.Version
			break
		}
	}

	if proto.Graph == nil {
		return info
	}

	// Inputs exclude initializers.
	initNames := make(map[string]bool)
	for i := range proto.Graph.Initializers {
		initNames[proto.Graph.Initializers[i].Name] = true
	}
	for i := range proto.Graph.Inputs {
		if !initNames[proto.Graph.Inputs[i].Name] {
			info.InputNames = append(info.InputNames, proto.Graph.Inputs[i].Name)
		}
	}
	for i := range proto.Graph.Outputs {
		info.OutputNames = append(info.OutputNames, proto.Graph.Outputs[i].Name)
	}

	seen := make(map[string]bool)
	for i := range proto.Graph.Nodes {
		op := proto.Graph.Nodes[i].OpType
		if !seen[op] {
			seen[op] = true
			info.Operators = append(info.Operators, op)
		}
	}

	info.NodeCount = len(proto.Graph.Nodes)
	info.WeightCount = len(proto.Graph.Initializers)
	return info
}

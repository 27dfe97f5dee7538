// Package onnx reads .onnx model files and turns them into the static
// computation graph the compiler consumes.
//
// Decoding works directly on the protobuf wire format through protowire.
// Only the messages the compiler needs are kept:
//   - ModelProto: opset imports, metadata and the graph
//   - GraphProto: nodes, inputs, outputs, initializers and value_info
//   - NodeProto: op type, domain, attributes and value names
//   - TensorProto: initializer contents and dims
//   - ValueInfoProto: element type and static or symbolic dims
//
// Example usage:
//
//	g, err := onnx.Load("relu.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, node := range g.Nodes {
//	    fmt.Println(node.Label())
//	}
package onnx

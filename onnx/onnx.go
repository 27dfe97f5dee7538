// Package onnx compiles ONNX models into native GL compute harnesses.
//
// A model is loaded into a static graph, every node is resolved against the
// built-in operator table for the model's opset, and each node becomes a
// fragment shader that computes one output element per pixel. The result is
// a C header and source pair that compiles and links those shaders with
// OpenGL ES at run time.
//
// # Example Usage
//
//	model, err := onnx.Load("relu.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opts := onnx.DefaultCompileOptions()
//	opts.Prefix = "relu"
//	artifact, err := model.Compile(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(artifact.Header)
//
// # Supported Operators
//
//   - Unary: Abs, Ceil, Cos, Exp, Floor, Identity, Log, Neg, Reciprocal, Sin, Sqrt, Tan
//   - Activation: Relu, Sigmoid, Tanh, LeakyRelu, Elu, Clip
//   - Binary: Add, Sub, Mul, Div, Pow
//   - Matrix: MatMul
//
// Use [ListSupportedOps] to get the complete list of supported operators.
package onnx

import (
	internalonnx "github.com/born-ml/glcompute/internal/onnx"
	"github.com/born-ml/glcompute/internal/operators"
)

// LoadOptions configures ONNX model loading behavior.
type LoadOptions = internalonnx.LoadOptions

// DefaultLoadOptions returns the default options for loading ONNX models.
//
// Default configuration:
//   - SortNodes: enabled (nodes run after the nodes producing their inputs)
func DefaultLoadOptions() LoadOptions {
	return internalonnx.DefaultLoadOptions()
}

// Load loads an ONNX model from a file path.
//
// Example:
//
//	model, err := onnx.Load("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Opset:", model.OpsetVersion())
func Load(path string, opts ...LoadOptions) (Model, error) {
	g, err := internalonnx.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	return &model{graph: g}, nil
}

// LoadFromBytes loads an ONNX model from raw bytes.
//
// This is useful when the model is embedded in the binary or loaded
// from a network source.
func LoadFromBytes(data []byte, opts ...LoadOptions) (Model, error) {
	g, err := internalonnx.LoadFromBytes(data, opts...)
	if err != nil {
		return nil, err
	}
	return &model{graph: g}, nil
}

// ModelInfo contains metadata about an ONNX model without converting it.
//
// Use [GetModelInfo] to quickly inspect a model file before loading.
type ModelInfo = internalonnx.ModelInfo

// GetModelInfo extracts metadata from an ONNX file without converting the graph.
//
// Example:
//
//	info, err := onnx.GetModelInfo("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Opset: %d\n", info.OpsetVersion)
//	fmt.Printf("Operators: %v\n", info.Operators)
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// ListSupportedOps returns the sorted op types the compiler has kernels for.
func ListSupportedOps() []string {
	return operators.NewRegistry().SupportedOps()
}

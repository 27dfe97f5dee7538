// Package native serializes a compiled graph into a standalone C harness for
// OpenGL ES 3: a header declaring the context structure and a source file
// embedding every shader and the init, bind and release routines.
package native

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/tensor"
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Kernel is one compiled fragment shader.
type Kernel struct {
	Name   string // originating node name, may be empty
	Source string // GLSL ES source
}

// Value is one graph value placed in the parameter buffer.
type Value struct {
	Index  int
	DType  tensor.DataType
	Offset int
}

// Program is the fully built in-memory form of a harness.
type Program struct {
	Prefix     string
	Vertex     string // GLSL ES vertex shader
	Kernels    []Kernel
	Values     []Value // tensor-bearing values only
	ParamsSize int

	// StandardEscapes embeds shaders with EscapeCStandard instead of
	// EscapeCLiteral.
	StandardEscapes bool
}

// Artifact is the emitted harness.
type Artifact struct {
	HeaderName string
	Header     string
	Source     string
}

type kernelView struct {
	Index   int
	Field   string
	Literal string
}

type valueView struct {
	Index  int
	CType  string
	Offset int
}

type programView struct {
	Prefix        string
	Guard         string
	HeaderName    string
	VertexLiteral string
	Kernels       []kernelView
	Values        []valueView
	ParamsSize    int
}

var (
	headerTemplate = template.Must(template.New("header").Parse(headerText))
	sourceTemplate = template.Must(template.New("source").Parse(sourceText))
)

// Emit renders the header and source of p.
func Emit(p *Program) (*Artifact, error) {
	view, err := newView(p)
	if err != nil {
		return nil, err
	}

	var header, source bytes.Buffer
	if err := headerTemplate.Execute(&header, view); err != nil {
		return nil, errors.Wrap(err, "native: render header")
	}
	if err := sourceTemplate.Execute(&source, view); err != nil {
		return nil, errors.Wrap(err, "native: render source")
	}
	return &Artifact{HeaderName: view.HeaderName, Header: header.String(), Source: source.String()}, nil
}

func newView(p *Program) (*programView, error) {
	if p == nil {
		return nil, errors.New("native: nil program")
	}
	if !prefixPattern.MatchString(p.Prefix) {
		return nil, errors.Errorf("native: prefix %q is not a C identifier", p.Prefix)
	}

	escape := EscapeCLiteral
	if p.StandardEscapes {
		escape = EscapeCStandard
	}

	view := &programView{
		Prefix:        p.Prefix,
		Guard:         strings.ToUpper(p.Prefix) + "_H",
		HeaderName:    p.Prefix + ".h",
		VertexLiteral: escape(p.Vertex),
		ParamsSize:    p.ParamsSize,
	}

	for i, k := range p.Kernels {
		field := "fragShader_" + strconv.Itoa(i)
		if k.Name != "" {
			field += "_" + identifier(k.Name)
		}
		view.Kernels = append(view.Kernels, kernelView{Index: i, Field: field, Literal: escape(k.Source)})
	}

	for _, v := range p.Values {
		ctype, err := CType(v.DType)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", v.Index)
		}
		if v.Offset < 0 || v.Offset > p.ParamsSize {
			return nil, errors.Errorf("native: value %d offset %d outside parameter buffer of %d bytes", v.Index, v.Offset, p.ParamsSize)
		}
		view.Values = append(view.Values, valueView{Index: v.Index, CType: ctype, Offset: v.Offset})
	}
	return view, nil
}

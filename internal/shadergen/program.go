// Package shadergen turns kernel program descriptions into shader sources.
//
// Operators describe a kernel as the body of a WGSL function
//
//	fn process(index: i32) -> f32
//
// that computes one output element from its linear index, reading inputs
// through generated get_<name>(i: i32) -> f32 loaders. The preprocessor wraps
// the body into a complete fragment shader, validates it and emits GLSL ES.
package shadergen

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/tensor"
)

// ErrInvalidProgram is returned for malformed program descriptions.
var ErrInvalidProgram = errors.New("shadergen: invalid program")

var identifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Input is one sampled input of a kernel.
type Input struct {
	Name  string
	Shape tensor.Shape
}

// ProgramInfo describes a kernel.
type ProgramInfo struct {
	Name        string
	Inputs      []Input
	OutputShape tensor.Shape
	// Body is the WGSL body of process(index: i32) -> f32.
	Body string
}

// Validate checks names and shapes.
func (p *ProgramInfo) Validate() error {
	if strings.TrimSpace(p.Body) == "" {
		return errors.Wrapf(ErrInvalidProgram, "%s: empty body", p.Name)
	}
	if err := p.OutputShape.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidProgram, "%s: output shape: %v", p.Name, err)
	}
	seen := make(map[string]bool, len(p.Inputs))
	for _, in := range p.Inputs {
		if !identifier.MatchString(in.Name) {
			return errors.Wrapf(ErrInvalidProgram, "%s: input name %q", p.Name, in.Name)
		}
		if seen[in.Name] {
			return errors.Wrapf(ErrInvalidProgram, "%s: duplicate input %q", p.Name, in.Name)
		}
		seen[in.Name] = true
		if err := in.Shape.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidProgram, "%s: input %s: %v", p.Name, in.Name, err)
		}
	}
	return nil
}

// Float renders v as a WGSL f32 literal. Infinities clamp to the largest
// finite float32.
func Float(v float32) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		f = 0
	case f > math.MaxFloat32:
		f = math.MaxFloat32
	case f < -math.MaxFloat32:
		f = -math.MaxFloat32
	}
	s := strconv.FormatFloat(f, 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Int renders v as a WGSL i32 literal.
func Int(v int) string {
	return strconv.Itoa(v)
}

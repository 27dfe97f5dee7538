package shadergen

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/born-ml/glcompute/internal/backend/webgl"
	"github.com/born-ml/glcompute/internal/logging"
)

var log = logging.For("shadergen")

// EntryPoint is the name of every generated shader entry point.
const EntryPoint = "main"

// Source is a generated shader in both its WGSL and GLSL ES forms.
type Source struct {
	Stage gputypes.ShaderStage
	WGSL  string
	GLSL  string
}

// Preprocessor assembles the final fragment shader for one program.
type Preprocessor struct {
	ctx  *webgl.Context
	info *ProgramInfo
}

// NewPreprocessor creates a preprocessor for info. Texture extents are taken
// from ctx.
func NewPreprocessor(ctx *webgl.Context, info *ProgramInfo) *Preprocessor {
	return &Preprocessor{ctx: ctx, info: info}
}

// Preprocess builds, validates and translates the fragment shader.
func (p *Preprocessor) Preprocess() (*Source, error) {
	if p.info == nil {
		return nil, ErrInvalidProgram
	}
	if err := p.info.Validate(); err != nil {
		return nil, err
	}

	wgsl, err := p.assemble()
	if err != nil {
		return nil, err
	}
	src, err := translate(wgsl, gputypes.ShaderStageFragment)
	if err != nil {
		return nil, err
	}
	log.WithField("program", p.info.Name).Debugf("generated %d bytes of GLSL", len(src.GLSL))
	return src, nil
}

func (p *Preprocessor) assemble() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n", p.info.Name)

	for i, in := range p.info.Inputs {
		width, _, err := p.ctx.TextureShape(in.Shape)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "@group(0) @binding(%d) var %s: texture_2d<f32>;\n\n", i, in.Name)
		fmt.Fprintf(&b, "fn get_%s(i: i32) -> f32 {\n", in.Name)
		fmt.Fprintf(&b, "    return textureLoad(%s, vec2<i32>(i %% %d, i / %d), 0).r;\n", in.Name, width, width)
		b.WriteString("}\n\n")
	}

	outWidth, _, err := p.ctx.TextureShape(p.info.OutputShape)
	if err != nil {
		return "", err
	}
	outSize := p.info.OutputShape.NumElements()

	b.WriteString("fn process(index: i32) -> f32 {\n")
	for _, line := range strings.Split(strings.TrimRight(p.info.Body, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    " + line + "\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("@fragment\n")
	fmt.Fprintf(&b, "fn %s(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {\n", EntryPoint)
	fmt.Fprintf(&b, "    let index = i32(pos.y) * %d + i32(pos.x);\n", outWidth)
	fmt.Fprintf(&b, "    if (index >= %d) {\n", outSize)
	b.WriteString("        return vec4<f32>(0.0, 0.0, 0.0, 0.0);\n")
	b.WriteString("    }\n")
	b.WriteString("    return vec4<f32>(process(index), 0.0, 0.0, 0.0);\n")
	b.WriteString("}\n")
	return b.String(), nil
}

// translate validates WGSL and emits GLSL ES 3.00.
func translate(wgsl string, stage gputypes.ShaderStage) (*Source, error) {
	module, err := webgl.LowerShader(wgsl, stage)
	if err != nil {
		return nil, err
	}
	code, err := emitGLSL(module)
	if err != nil {
		return nil, &webgl.ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	return &Source{Stage: stage, WGSL: wgsl, GLSL: code}, nil
}

func emitGLSL(module *ir.Module) (string, error) {
	code, _, err := glsl.Compile(module, glsl.Options{
		LangVersion:        glsl.VersionES300,
		EntryPoint:         EntryPoint,
		ForceHighPrecision: true,
	})
	return code, err
}

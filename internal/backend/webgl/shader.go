package webgl

import (
	"encoding/binary"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/wgpu/hal"
	"github.com/pkg/errors"
)

// Shader is a compiled shader module.
type Shader struct {
	Stage  gputypes.ShaderStage
	Source string
	SPIRV  []uint32

	module hal.ShaderModule
}

// Program links a vertex shader with a fragment shader.
type Program struct {
	Vertex   *Shader
	Fragment *Shader

	live bool
}

// LowerShader parses WGSL source, lowers it to IR and validates it.
// Any failure is reported as a *ShaderCompileError carrying the compiler log.
func LowerShader(source string, stage gputypes.ShaderStage) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	problems, err := naga.Validate(module)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	if len(problems) > 0 {
		lines := make([]string, len(problems))
		for i, p := range problems {
			lines[i] = p.Error()
		}
		return nil, &ShaderCompileError{Stage: stage, Log: strings.Join(lines, "\n")}
	}
	return module, nil
}

// CompileShader compiles WGSL source to SPIR-V and creates a device shader
// module. The shader must be released with DeleteShader.
func (c *Context) CompileShader(source string, stage gputypes.ShaderStage) (*Shader, error) {
	module, err := LowerShader(source, stage)
	if err != nil {
		return nil, err
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	words, err := spirvWords(code)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}

	handle, err := c.device.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "glcompute " + strings.ToLower(stage.String()),
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, errors.Wrap(err, "webgl: create shader module")
	}

	c.stats.Shaders++
	return &Shader{Stage: stage, Source: source, SPIRV: words, module: handle}, nil
}

// spirvWords reinterprets little-endian SPIR-V bytes as 32-bit words.
func spirvWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("invalid SPIR-V length %d", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// DeleteShader releases a shader module. Deleting twice is a no-op.
func (c *Context) DeleteShader(s *Shader) {
	if s == nil || s.module == nil {
		return
	}
	c.device.device.DestroyShaderModule(s.module)
	s.module = nil
	c.stats.Shaders--
}

// CreateProgram links vs and fs into a program.
func (c *Context) CreateProgram(vs, fs *Shader) (*Program, error) {
	if vs == nil || fs == nil {
		return nil, errors.New("webgl: create program with nil shader")
	}
	if vs.module == nil || fs.module == nil {
		return nil, errors.Wrap(ErrReleased, "create program")
	}
	if vs.Stage != gputypes.ShaderStageVertex || fs.Stage != gputypes.ShaderStageFragment {
		return nil, errors.Errorf("webgl: create program with %s and %s shaders", vs.Stage, fs.Stage)
	}
	c.stats.Programs++
	return &Program{Vertex: vs, Fragment: fs, live: true}, nil
}

// DeleteProgram releases a program. Its shaders are released separately.
func (c *Context) DeleteProgram(p *Program) {
	if p == nil || !p.live {
		return
	}
	p.live = false
	c.stats.Programs--
}

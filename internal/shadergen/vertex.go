package shadergen

import (
	"github.com/gogpu/gputypes"
)

// vertexWGSL draws a full-screen quad as a four-vertex triangle strip:
// upper left, lower left, upper right, lower right.
const vertexWGSL = `@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(idx) / 2) * 2.0 - 1.0;
    let y = 1.0 - f32(i32(idx) % 2) * 2.0;
    return vec4<f32>(x, y, 0.0, 1.0);
}
`

// VertexShader returns the vertex shader shared by every kernel.
func VertexShader() (*Source, error) {
	return translate(vertexWGSL, gputypes.ShaderStageVertex)
}

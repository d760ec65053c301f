package preview

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"suntrace/render"
)

const quadVertexShader = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const quadFragmentShader = `
#version 410 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uImage;
void main() {
    fragColor = texture(uImage, vUV);
}
` + "\x00"

// quadVertices is a single full-screen triangle strip: position (x, y) and
// texture coordinate (u, v) per vertex.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	1, 1, 1, 0,
}

// Blitter uploads a render.Output's colour buffer as a GPU texture each
// frame and draws it as one full-screen quad.
type Blitter struct {
	program uint32
	vao     uint32
	vbo     uint32
	texture uint32
	pixels  []uint8
}

// NewBlitter compiles the quad shader and allocates the vertex buffer and
// texture object used to display successive Outputs.
func NewBlitter() (*Blitter, error) {
	program, err := newProgram(quadVertexShader, quadFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("preview: compile quad shader: %w", err)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, unsafe.Pointer(&quadVertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)
	gl.EnableVertexAttribArray(1)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &Blitter{program: program, vao: vao, vbo: vbo, texture: tex}, nil
}

// Draw uploads out's colour buffer (tone-mapped by a simple clamp) and
// draws it filling the current viewport.
func (b *Blitter) Draw(out *render.Output) {
	if cap(b.pixels) < out.Width*out.Height*4 {
		b.pixels = make([]uint8, out.Width*out.Height*4)
	}
	b.pixels = b.pixels[:out.Width*out.Height*4]
	for i, c := range out.Color {
		b.pixels[i*4+0] = toByte(c.R)
		b.pixels[i*4+1] = toByte(c.G)
		b.pixels[i*4+2] = toByte(c.B)
		b.pixels[i*4+3] = toByte(c.A)
	}

	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(out.Width), int32(out.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&b.pixels[0]))

	gl.UseProgram(b.program)
	loc := gl.GetUniformLocation(b.program, gl.Str("uImage\x00"))
	gl.Uniform1i(loc, 0)
	gl.ActiveTexture(gl.TEXTURE0)

	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
}

// Destroy releases the blitter's GPU resources.
func (b *Blitter) Destroy() {
	gl.DeleteTextures(1, &b.texture)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteProgram(b.program)
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}

package gldevice

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gothermal/gpu"
	"github.com/richinsley/gothermal/shader"
	xlate "github.com/richinsley/gothermal/translator"
)

type program struct {
	id           uint32
	name         string
	transformLoc int32
	// locations is keyed by the uniform name used in the WebGL2 source.
	locations map[string]int32
}

func (p *program) Release() {
	if p.id == 0 {
		return
	}
	gl.DeleteProgram(p.id)
	p.id = 0
}

func (d *Device) NewProgram(src gpu.ProgramSource) (gpu.Program, error) {
	fs, err := xlate.TranslateFragment(src.Fragment, d.isGLES)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", src.Name, err)
	}
	vertexSource := src.Vertex
	if vertexSource == "" {
		vertexSource = shader.GenerateVertexShader(d.isGLES)
	}

	id, err := newProgram(vertexSource, fs.Code)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", src.Name, err)
	}

	p := &program{
		id:        id,
		name:      src.Name,
		locations: make(map[string]int32, len(fs.Uniforms)),
	}
	p.transformLoc = gl.GetUniformLocation(id, gl.Str("uTransform\x00"))
	for name, mapped := range fs.Uniforms {
		p.locations[name] = gl.GetUniformLocation(id, gl.Str(mapped+"\x00"))
	}
	return p, nil
}

// apply uploads the bindings to the bound program and returns how many
// texture units it used.
func (p *program) apply(bindings gpu.Bindings) (int, error) {
	unit := 0
	for _, u := range bindings {
		loc, ok := p.locations[u.Name]
		if !ok || loc == -1 {
			continue
		}
		switch v := u.Value.(type) {
		case gpu.Float:
			gl.Uniform1f(loc, float32(v))
		case gpu.Vec2:
			gl.Uniform2f(loc, v[0], v[1])
		case gpu.Vec3:
			gl.Uniform3f(loc, v[0], v[1], v[2])
		case gpu.Vec4:
			gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
		case gpu.Mat4:
			gl.UniformMatrix4fv(loc, 1, false, &v[0])
		case gpu.Sampler:
			tex, ok := v.Texture.(*texture)
			if !ok || tex.id == 0 {
				return unit, fmt.Errorf("sampler %s in program %s has no live texture", u.Name, p.name)
			}
			gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
			gl.BindTexture(gl.TEXTURE_2D, tex.id)
			gl.Uniform1i(loc, int32(unit))
			unit++
		default:
			return unit, fmt.Errorf("uniform %s has unsupported type %T", u.Name, u.Value)
		}
	}
	return unit, nil
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(sh, logLength, nil, gl.Str(logText))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return sh, nil
}

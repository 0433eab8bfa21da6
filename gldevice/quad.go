package gldevice

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gothermal/gpu"
)

// Unit plane, two triangles, positions in [-0.5, 0.5].
var quadVertices = []float32{
	-0.5, 0.5, -0.5, -0.5, 0.5, -0.5,
	-0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
}

type quad struct {
	vao uint32
	vbo uint32
}

func (d *Device) NewQuad() (gpu.Mesh, error) {
	q := &quad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindVertexArray(q.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return q, nil
}

func (q *quad) Release() {
	if q.vao == 0 {
		return
	}
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
	q.vao, q.vbo = 0, 0
}

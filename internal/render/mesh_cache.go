package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/assets"
	"voxstream/internal/meshing"
	"voxstream/internal/streaming"
)

type gpuMesh struct {
	vao, vbo    uint32
	vertexCount int32
	origin      mgl32.Vec3
	lo, hi      mgl32.Vec3 // world-space bounds
	models      []assets.Model
}

// MeshCache owns GPU buffers for streamed meshes. Every method must run on the
// goroutine holding the GL context.
type MeshCache struct {
	meshes map[uint32]*gpuMesh
	next   uint32
}

func NewMeshCache() *MeshCache {
	return &MeshCache{meshes: make(map[uint32]*gpuMesh)}
}

// Upload copies vertices (meshing layout, relative to origin) into a new
// VAO/VBO pair and returns its handle.
func (c *MeshCache) Upload(vertices []float32, origin mgl32.Vec3) uint32 {
	m := &gpuMesh{origin: origin}
	lo, hi := Bounds(vertices)
	m.lo, m.hi = lo.Add(origin), hi.Add(origin)

	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)

	stride := int32(meshing.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 6*4)

	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
		m.vertexCount = int32(len(vertices) / meshing.VertexStride)
	}
	gl.BindVertexArray(0)

	c.next++
	c.meshes[c.next] = m
	return c.next
}

// Remove frees the buffers behind id. Unknown handles are ignored.
func (c *MeshCache) Remove(id uint32) {
	m, ok := c.meshes[id]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
	delete(c.meshes, id)
}

// Draw renders every mesh intersecting f and returns how many were drawn.
func (c *MeshCache) Draw(s *Shader, f *Frustum) int {
	drawn := 0
	for _, m := range c.meshes {
		if m.vertexCount == 0 || !f.IntersectsAABB(m.lo, m.hi) {
			continue
		}
		s.SetVector3("origin", m.origin.X(), m.origin.Y(), m.origin.Z())
		gl.BindVertexArray(m.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, m.vertexCount)
		drawn++
	}
	gl.BindVertexArray(0)
	return drawn
}

func (c *MeshCache) Len() int { return len(c.meshes) }

// Dispose frees every buffer.
func (c *MeshCache) Dispose() {
	for id := range c.meshes {
		c.Remove(id)
	}
}

// ChunkOwner adapts the cache to a terrain streaming manager.
func (c *MeshCache) ChunkOwner() streaming.OwnerFuncs[streaming.Key, *meshing.Mesh, uint32] {
	return streaming.OwnerFuncs[streaming.Key, *meshing.Mesh, uint32]{
		InsertFunc: func(_ streaming.Key, mesh *meshing.Mesh, origin mgl32.Vec3) uint32 {
			return c.Upload(mesh.Vertices, origin)
		},
		RemoveFunc: c.Remove,
	}
}

// PropOwner adapts the cache to a prop streaming manager. Templates are
// acquired from lib for as long as the baked mesh is resident.
func (c *MeshCache) PropOwner(lib *assets.Library) streaming.OwnerFuncs[streaming.Key, *assets.Props, uint32] {
	return streaming.OwnerFuncs[streaming.Key, *assets.Props, uint32]{
		InsertFunc: func(_ streaming.Key, props *assets.Props, origin mgl32.Vec3) uint32 {
			templates := make([]*assets.Template, len(props.Placements))
			models := make([]assets.Model, len(props.Placements))
			for i, pl := range props.Placements {
				templates[i] = lib.Acquire(pl.Model)
				models[i] = pl.Model
			}
			id := c.Upload(BakeProps(props.Placements, templates), origin)
			c.meshes[id].models = models
			return id
		},
		RemoveFunc: func(id uint32) {
			if m, ok := c.meshes[id]; ok {
				for _, model := range m.models {
					lib.Release(model)
				}
			}
			c.Remove(id)
		},
	}
}

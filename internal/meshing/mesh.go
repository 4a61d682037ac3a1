package meshing

import (
	"errors"

	"voxstream/internal/streaming"
	"voxstream/internal/terrain"
)

// VertexStride is the number of float32 per vertex (pos.xyz + normal.xyz + color.rgb).
const VertexStride = 9

// ErrEmptyColumn is returned for columns with no cells to mesh.
var ErrEmptyColumn = errors.New("meshing: empty column")

// HeightSampler answers surface heights outside the column being meshed.
// *terrain.Generator satisfies it.
type HeightSampler interface {
	HeightAt(worldX, worldZ int) int
}

// Mesh is the triangle list for one column. Positions are relative to the
// column origin on X/Z and absolute on Y.
type Mesh struct {
	Key      streaming.Key
	Vertices []float32
	Quads    int
	Sides    Sides
	MinY     int
	MaxY     int
}

// VertexCount returns the number of vertices in the triangle list.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / VertexStride
}

type builder struct {
	verts []float32
	quads int
	sides Sides
}

// quad appends two triangles (v0,v1,v2) (v2,v3,v0). Corners must wind
// counter-clockwise seen from the side the normal points to.
func (b *builder) quad(side Sides, v [4][3]float32, n [3]float32, c [3]float32) {
	for _, i := range [6]int{0, 1, 2, 2, 3, 0} {
		b.verts = append(b.verts,
			v[i][0], v[i][1], v[i][2],
			n[0], n[1], n[2],
			c[0], c[1], c[2],
		)
	}
	b.quads++
	b.sides |= side
}

// Build meshes a column: one top quad per cell plus a wall on every side
// whose neighbor surface is lower. Neighbors across the column border are
// read from neighbors.
func Build(col *terrain.Column, neighbors HeightSampler) (*Mesh, error) {
	if col == nil || col.Void || len(col.Heights) == 0 {
		return nil, ErrEmptyColumn
	}

	size := col.Size
	baseX, baseZ := col.Key.X*size, col.Key.Z*size
	height := func(lx, lz int) int {
		if lx >= 0 && lx < size && lz >= 0 && lz < size {
			h, _ := col.At(lx, lz)
			return h
		}
		return neighbors.HeightAt(baseX+lx, baseZ+lz)
	}

	b := builder{verts: make([]float32, 0, size*size*6*VertexStride*2)}
	lo, hi := col.Range()

	for lx := range size {
		for lz := range size {
			h, block := col.At(lx, lz)
			top := block.Color()
			wall := wallColor(block)

			x0, x1 := float32(lx), float32(lx+1)
			z0, z1 := float32(lz), float32(lz+1)
			y := float32(h)

			b.quad(Top, [4][3]float32{{x0, y, z0}, {x0, y, z1}, {x1, y, z1}, {x1, y, z0}}, [3]float32{0, 1, 0}, top)

			if nh := height(lx+1, lz); nh < h {
				ny := float32(nh)
				lo = min(lo, nh)
				b.quad(Right, [4][3]float32{{x1, ny, z0}, {x1, y, z0}, {x1, y, z1}, {x1, ny, z1}}, [3]float32{1, 0, 0}, wall)
			}
			if nh := height(lx-1, lz); nh < h {
				ny := float32(nh)
				lo = min(lo, nh)
				b.quad(Left, [4][3]float32{{x0, ny, z1}, {x0, y, z1}, {x0, y, z0}, {x0, ny, z0}}, [3]float32{-1, 0, 0}, wall)
			}
			if nh := height(lx, lz+1); nh < h {
				ny := float32(nh)
				lo = min(lo, nh)
				b.quad(Forward, [4][3]float32{{x1, ny, z1}, {x1, y, z1}, {x0, y, z1}, {x0, ny, z1}}, [3]float32{0, 0, 1}, wall)
			}
			if nh := height(lx, lz-1); nh < h {
				ny := float32(nh)
				lo = min(lo, nh)
				b.quad(Backward, [4][3]float32{{x0, ny, z0}, {x0, y, z0}, {x1, y, z0}, {x1, ny, z0}}, [3]float32{0, 0, -1}, wall)
			}
		}
	}

	return &Mesh{
		Key:      col.Key,
		Vertices: b.verts,
		Quads:    b.quads,
		Sides:    b.sides,
		MinY:     lo,
		MaxY:     hi,
	}, nil
}

func wallColor(top terrain.Block) [3]float32 {
	if top == terrain.Grass {
		return terrain.Dirt.Color()
	}
	return top.Color()
}

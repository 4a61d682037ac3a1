package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/assets"
	"voxstream/internal/meshing"
)

// BakeProps transforms each placement's template into one vertex list in the
// meshing layout. templates[i] belongs to placements[i].
func BakeProps(placements []assets.Placement, templates []*assets.Template) []float32 {
	var out []float32
	for i, pl := range placements {
		if i >= len(templates) || templates[i] == nil {
			continue
		}
		sin, cos := math.Sincos(float64(pl.Yaw))
		s, c := float32(sin), float32(cos)
		rotate := func(x, z float32) (float32, float32) {
			return x*c + z*s, -x*s + z*c
		}

		src := templates[i].Vertices
		for o := 0; o+meshing.VertexStride <= len(src); o += meshing.VertexStride {
			v := src[o : o+meshing.VertexStride]
			px, pz := rotate(v[0]*pl.Scale, v[2]*pl.Scale)
			nx, nz := rotate(v[3], v[5])
			out = append(out,
				px+pl.Position.X(), v[1]*pl.Scale+pl.Position.Y(), pz+pl.Position.Z(),
				nx, v[4], nz,
				v[6], v[7], v[8],
			)
		}
	}
	return out
}

// Bounds returns the axis-aligned box of a vertex list in the meshing layout.
func Bounds(vertices []float32) (lo, hi mgl32.Vec3) {
	if len(vertices) < meshing.VertexStride {
		return lo, hi
	}
	lo = mgl32.Vec3{vertices[0], vertices[1], vertices[2]}
	hi = lo
	for o := meshing.VertexStride; o+meshing.VertexStride <= len(vertices); o += meshing.VertexStride {
		for a := range 3 {
			lo[a] = min(lo[a], vertices[o+a])
			hi[a] = max(hi[a], vertices[o+a])
		}
	}
	return lo, hi
}

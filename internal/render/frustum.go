package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six clip planes in order left, right, bottom, top, near,
// far.
type Frustum [6]plane

// NewFrustum extracts the planes from a combined projection*view matrix.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 matrices are column-major.
	row := func(r int) [4]float32 {
		return [4]float32{clip[r], clip[4+r], clip[8+r], clip[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	mk := func(sign float32, r [4]float32) plane {
		return normalize(plane{
			r3[0] + sign*r[0],
			r3[1] + sign*r[1],
			r3[2] + sign*r[2],
			r3[3] + sign*r[3],
		})
	}
	return Frustum{mk(1, r0), mk(-1, r0), mk(1, r1), mk(-1, r1), mk(1, r2), mk(-1, r2)}
}

func normalize(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// IntersectsAABB reports whether the box [lo,hi] is at least partly inside.
func (f *Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	for _, p := range f {
		// Positive vertex: the box corner furthest along the plane normal.
		px, py, pz := hi.X(), hi.Y(), hi.Z()
		if p.a < 0 {
			px = lo.X()
		}
		if p.b < 0 {
			py = lo.Y()
		}
		if p.c < 0 {
			pz = lo.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

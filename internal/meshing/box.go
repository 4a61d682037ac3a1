package meshing

import "github.com/go-gl/mathgl/mgl32"

// AppendBox appends the faces of the axis-aligned box [lo,hi] selected by
// sides to dst and returns the extended slice.
func AppendBox(dst []float32, lo, hi mgl32.Vec3, sides Sides, color [3]float32) []float32 {
	b := builder{verts: dst}
	x0, y0, z0 := lo.X(), lo.Y(), lo.Z()
	x1, y1, z1 := hi.X(), hi.Y(), hi.Z()

	if sides.Has(Top) {
		b.quad(Top, [4][3]float32{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}, [3]float32{0, 1, 0}, color)
	}
	if sides.Has(Bottom) {
		b.quad(Bottom, [4][3]float32{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}, [3]float32{0, -1, 0}, color)
	}
	if sides.Has(Right) {
		b.quad(Right, [4][3]float32{{x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}, {x1, y0, z1}}, [3]float32{1, 0, 0}, color)
	}
	if sides.Has(Left) {
		b.quad(Left, [4][3]float32{{x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}, {x0, y0, z0}}, [3]float32{-1, 0, 0}, color)
	}
	if sides.Has(Forward) {
		b.quad(Forward, [4][3]float32{{x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}, {x0, y0, z1}}, [3]float32{0, 0, 1}, color)
	}
	if sides.Has(Backward) {
		b.quad(Backward, [4][3]float32{{x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}, {x1, y0, z0}}, [3]float32{0, 0, -1}, color)
	}
	return b.verts
}

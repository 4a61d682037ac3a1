package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying first-person camera.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees, 0 looks down -Z
	Pitch    float32 // degrees, clamped to ±89

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, pos mgl32.Vec3) *Camera {
	return &Camera{
		Position:    pos,
		AspectRatio: float32(width) / float32(max(height, 1)),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Look turns the camera by mouse deltas in degrees.
func (c *Camera) Look(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 360))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

// Move translates the camera relative to its heading. forward and right are
// in world units; up moves along world Y.
func (c *Camera) Move(forward, right, up float32) {
	front := c.Front()
	flat := mgl32.Vec3{front.X(), 0, front.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	side := flat.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.Position = c.Position.
		Add(flat.Mul(forward)).
		Add(side.Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustum(c.Projection().Mul4(c.View()))
}

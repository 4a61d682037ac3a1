package main

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Path gives the viewpoint position at a tick.
type Path func(tick uint64) mgl32.Vec3

// jumpEvery is the number of ticks between teleports on the jump path.
const jumpEvery = 120

// newPath builds a named fly path. speed is in world units per tick.
func newPath(name string, speed float64) (Path, error) {
	switch name {
	case "circle":
		const radius = 256.0
		return func(tick uint64) mgl32.Vec3 {
			a := float64(tick) * speed / radius
			return mgl32.Vec3{float32(radius * math.Cos(a)), 0, float32(radius * math.Sin(a))}
		}, nil
	case "line":
		return func(tick uint64) mgl32.Vec3 {
			return mgl32.Vec3{float32(float64(tick) * speed), 0, 0}
		}, nil
	case "jump":
		return func(tick uint64) mgl32.Vec3 {
			n := float64(tick / jumpEvery)
			offset := float64(tick%jumpEvery) * speed
			return mgl32.Vec3{float32(n*1024 + offset), 0, float32(n * -512)}
		}, nil
	case "still":
		return func(uint64) mgl32.Vec3 { return mgl32.Vec3{} }, nil
	default:
		return nil, fmt.Errorf("unknown path %q (want circle, line, jump or still)", name)
	}
}

package streaming

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Key identifies one streamable grid cell on the XZ plane.
type Key struct {
	X, Z int
}

// DistanceSq returns the squared grid distance between two keys.
func (k Key) DistanceSq(o Key) int {
	dx := k.X - o.X
	dz := k.Z - o.Z
	return dx*dx + dz*dz
}

func (k Key) String() string {
	return "(" + strconv.Itoa(k.X) + "," + strconv.Itoa(k.Z) + ")"
}

// Origin returns the world-space corner of the cell.
func (k Key) Origin(cellSize float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(k.X) * cellSize, 0, float32(k.Z) * cellSize}
}

// CellOf returns the cell containing pos. Negative coordinates floor towards
// negative infinity, so -0.5 lands in cell -1.
func CellOf(pos mgl32.Vec3, cellSize float32) Key {
	return Key{
		X: int(math.Floor(float64(pos.X() / cellSize))),
		Z: int(math.Floor(float64(pos.Z() / cellSize))),
	}
}

// Layout maps world positions to keys and decides which keys are wanted around
// a center. The manager is generic over it so other key spaces can stream
// through the same state machine.
type Layout[K comparable] interface {
	Cell(pos mgl32.Vec3) K
	Wanted(center K, radius int) []K
	DistanceSq(a, b K) int
	Origin(k K) mgl32.Vec3
}

// Grid is the square-cell Layout for Key.
type Grid struct {
	CellSize float32
}

func (g Grid) Cell(pos mgl32.Vec3) Key { return CellOf(pos, g.CellSize) }

func (g Grid) Wanted(center Key, radius int) []Key { return WantedSet(center, radius) }

func (g Grid) DistanceSq(a, b Key) int { return a.DistanceSq(b) }

func (g Grid) Origin(k Key) mgl32.Vec3 { return k.Origin(g.CellSize) }

// WantedSet scans the (2r+1)² box around center and keeps the keys inside the
// rounded disc dx²+dz² <= r(r+1). Radius 0 is the center alone, radius 1 the
// full 3x3 block; larger radii drop the box corners. Keys are returned in scan
// order (x outer, z inner).
func WantedSet(center Key, radius int) []Key {
	if radius < 0 {
		radius = 0
	}
	limit := radius * (radius + 1)
	keys := make([]Key, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx*dx+dz*dz > limit {
				continue
			}
			keys = append(keys, Key{X: center.X + dx, Z: center.Z + dz})
		}
	}
	return keys
}

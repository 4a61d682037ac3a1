package assets

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/streaming"
	"voxstream/internal/terrain"
	"voxstream/internal/worker"
)

// ErrNoGround is returned for cells outside the world border.
var ErrNoGround = errors.New("assets: no ground to place props on")

// MaxPerCell caps the number of props scattered into one cell.
const MaxPerCell = 6

// Placement is one prop instance. Position is relative to the cell origin.
type Placement struct {
	Model    Model
	Position mgl32.Vec3
	Yaw      float32
	Scale    float32
}

// Props is the payload produced for one cell.
type Props struct {
	Key        streaming.Key
	Placements []Placement
}

// Scatter picks deterministic prop placements for key. The same seed and key
// always yield the same props. Props never spawn at or below sea level, and
// rooms only go on flat ground.
func Scatter(gen *terrain.Generator, key streaming.Key, cellSize int) (*Props, error) {
	if !gen.InBounds(key) {
		return nil, ErrNoGround
	}
	if cellSize <= 1 {
		return nil, fmt.Errorf("assets: cell size %d", cellSize)
	}

	rng := rand.New(rand.NewPCG(uint64(gen.Seed()), uint64(key.X)<<32^uint64(uint32(key.Z))))
	props := &Props{Key: key}
	baseX, baseZ := key.X*cellSize, key.Z*cellSize

	n := rng.IntN(MaxPerCell + 1)
	for range n {
		lx := rng.IntN(cellSize)
		lz := rng.IntN(cellSize)
		yaw := rng.Float32() * 2 * math.Pi
		roll := rng.IntN(10)

		h := gen.HeightAt(baseX+lx, baseZ+lz)
		if h <= terrain.SeaLevel {
			continue
		}

		var m Model
		switch {
		case roll == 0 && flat(gen, baseX+lx, baseZ+lz, h):
			m = Model{Kind: Room}
		case roll < 4:
			m = Model{Kind: Dynamic, Variant: uint32(rng.IntN(DynamicVariants))}
		default:
			m = Model{Kind: Cube}
		}

		props.Placements = append(props.Placements, Placement{
			Model:    m,
			Position: mgl32.Vec3{float32(lx) + 0.5, float32(h), float32(lz) + 0.5},
			Yaw:      yaw,
			Scale:    0.75 + rng.Float32()*0.5,
		})
	}
	return props, nil
}

// flat reports whether the 3x3 footprint around (x, z) has no step.
func flat(gen *terrain.Generator, x, z, h int) bool {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if gen.HeightAt(x+dx, z+dz) != h {
				return false
			}
		}
	}
	return true
}

// Factory returns the per-worker scatter function.
func Factory(gen *terrain.Generator, cellSize int) worker.Factory[streaming.Key, mgl32.Vec3, *Props] {
	return func(int) worker.GenerateFunc[streaming.Key, mgl32.Vec3, *Props] {
		g := gen.Clone()
		return func(key streaming.Key, _ mgl32.Vec3) (*Props, error) {
			return Scatter(g, key, cellSize)
		}
	}
}

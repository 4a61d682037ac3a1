package assets

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/meshing"
	"voxstream/internal/terrain"
)

// Kind selects the geometry family of a prop model.
type Kind uint8

const (
	Cube Kind = iota
	Room
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Cube:
		return "cube"
	case Room:
		return "room"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Model identifies a shared prop template. Variant only matters for Dynamic.
type Model struct {
	Kind    Kind
	Variant uint32
}

func (m Model) String() string {
	if m.Kind == Dynamic {
		return fmt.Sprintf("dynamic/%d", m.Variant)
	}
	return m.Kind.String()
}

// DynamicVariants is the number of distinct Dynamic models Scatter picks from.
const DynamicVariants = 4

// geometry builds the template vertices for m, in the meshing vertex layout.
// Templates sit on y=0 centered on the XZ origin.
func geometry(m Model) []float32 {
	switch m.Kind {
	case Room:
		v := meshing.AppendBox(nil, mgl32.Vec3{-1.5, 0, -1.5}, mgl32.Vec3{1.5, 0.1, 1.5}, meshing.AllSides, terrain.Stone.Color())
		return meshing.AppendBox(v, mgl32.Vec3{-1.5, 0, -1.5}, mgl32.Vec3{1.5, 2.5, 1.5},
			meshing.Left|meshing.Right|meshing.Forward|meshing.Backward, terrain.Dirt.Color())
	case Dynamic:
		h := 1 + float32(m.Variant)
		return meshing.AppendBox(nil, mgl32.Vec3{-0.3, 0, -0.3}, mgl32.Vec3{0.3, h, 0.3}, meshing.AllSides, [3]float32{0.4, 0.25, 0.1})
	default:
		return meshing.AppendBox(nil, mgl32.Vec3{-0.5, 0, -0.5}, mgl32.Vec3{0.5, 1, 0.5}, meshing.AllSides, [3]float32{0.7, 0.2, 0.2})
	}
}

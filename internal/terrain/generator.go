package terrain

import (
	"fmt"
	"math"

	"voxstream/internal/streaming"
)

// SeaLevel is the height at and below which surfaces turn to sand.
const SeaLevel = 30

// Settings tune the heightmap.
type Settings struct {
	Seed       int64
	BaseHeight int
	Amplitude  float64
	// Border is the world half-width in columns; keys beyond it are void.
	// Zero means unbounded.
	Border int
}

// Generator computes surface heights. It is immutable after construction and
// safe for concurrent use; Clone hands each worker its own copy anyway.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
	border      int
}

// NewGenerator creates a generator with the default shape.
func NewGenerator(s Settings) *Generator {
	g := &Generator{
		seed:        s.Seed,
		scale:       1.0 / 64.0,
		baseHeight:  s.BaseHeight,
		amp:         s.Amplitude,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
		border:      s.Border,
	}
	if g.baseHeight <= 0 {
		g.baseHeight = 24
	}
	if g.amp <= 0 {
		g.amp = 32
	}
	return g
}

func (g *Generator) Clone() *Generator {
	c := *g
	return &c
}

func (g *Generator) Seed() int64 { return g.seed }

// MaxHeight is the highest surface the generator can produce.
func (g *Generator) MaxHeight() int {
	return g.baseHeight + int(math.Ceil(g.amp))
}

// HeightAt returns the surface height at world block coordinates.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := fbm(float64(worldX)*g.scale, float64(worldZ)*g.scale, g.seed, g.octaves, g.persistence, g.lacunarity)
	h := float64(g.baseHeight) + n*g.amp
	if h < 1 {
		h = 1
	}
	return int(math.Floor(h))
}

// InBounds reports whether key lies inside the world border.
func (g *Generator) InBounds(key streaming.Key) bool {
	if g.border <= 0 {
		return true
	}
	return abs(key.X) <= g.border && abs(key.Z) <= g.border
}

// surface picks the top block from height and the steepest neighbor step.
func (g *Generator) surface(h, slope int) Block {
	switch {
	case h <= SeaLevel:
		return Sand
	case h >= g.baseHeight+int(g.amp*0.85):
		return Snow
	case slope >= 3:
		return Stone
	default:
		return Grass
	}
}

// Column is a size×size heightmap for one grid cell. Local index is
// lx*Size + lz.
type Column struct {
	Key     streaming.Key
	Size    int
	Heights []int
	Surface []Block

	// Void columns lie outside the world border and carry no cells.
	Void bool
}

func (c *Column) index(lx, lz int) int { return lx*c.Size + lz }

// At returns the height and surface block at local coordinates.
func (c *Column) At(lx, lz int) (int, Block) {
	i := c.index(lx, lz)
	return c.Heights[i], c.Surface[i]
}

// Range returns the lowest and highest surface in the column.
func (c *Column) Range() (lo, hi int) {
	if len(c.Heights) == 0 {
		return 0, 0
	}
	lo, hi = c.Heights[0], c.Heights[0]
	for _, h := range c.Heights[1:] {
		lo = min(lo, h)
		hi = max(hi, h)
	}
	return lo, hi
}

// Column generates the heightmap for key. Cells sample the world at
// key*size + local offset.
func (g *Generator) Column(key streaming.Key, size int) (*Column, error) {
	if size <= 0 {
		return nil, fmt.Errorf("terrain: column size %d", size)
	}
	col := &Column{Key: key, Size: size}
	if !g.InBounds(key) {
		col.Void = true
		return col, nil
	}

	baseX, baseZ := key.X*size, key.Z*size

	// One-cell apron so slopes at the border see their real neighbors.
	span := size + 2
	apron := make([]int, span*span)
	for ax := range span {
		for az := range span {
			apron[ax*span+az] = g.HeightAt(baseX+ax-1, baseZ+az-1)
		}
	}

	col.Heights = make([]int, size*size)
	col.Surface = make([]Block, size*size)
	for lx := range size {
		for lz := range size {
			ax, az := lx+1, lz+1
			h := apron[ax*span+az]
			slope := 0
			for _, n := range [4]int{
				apron[(ax-1)*span+az],
				apron[(ax+1)*span+az],
				apron[ax*span+az-1],
				apron[ax*span+az+1],
			} {
				slope = max(slope, abs(h-n))
			}
			i := col.index(lx, lz)
			col.Heights[i] = h
			col.Surface[i] = g.surface(h, slope)
		}
	}
	return col, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

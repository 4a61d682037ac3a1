package meshing

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/streaming"
	"voxstream/internal/terrain"
	"voxstream/internal/worker"
)

// Factory returns the per-worker generation function for terrain meshes.
// Each worker gets its own generator clone.
func Factory(gen *terrain.Generator, size int) worker.Factory[streaming.Key, mgl32.Vec3, *Mesh] {
	return func(int) worker.GenerateFunc[streaming.Key, mgl32.Vec3, *Mesh] {
		g := gen.Clone()
		return func(key streaming.Key, _ mgl32.Vec3) (*Mesh, error) {
			col, err := g.Column(key, size)
			if err != nil {
				return nil, fmt.Errorf("column %v: %w", key, err)
			}
			mesh, err := Build(col, g)
			if err != nil {
				return nil, fmt.Errorf("mesh %v: %w", key, err)
			}
			return mesh, nil
		}
	}
}

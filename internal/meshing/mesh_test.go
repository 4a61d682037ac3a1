package meshing

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/streaming"
	"voxstream/internal/terrain"
)

type flat int

func (f flat) HeightAt(int, int) int { return int(f) }

func flatColumn(size, h int) *terrain.Column {
	col := &terrain.Column{
		Key:     streaming.Key{X: 1, Z: -1},
		Size:    size,
		Heights: make([]int, size*size),
		Surface: make([]terrain.Block, size*size),
	}
	for i := range col.Heights {
		col.Heights[i] = h
		col.Surface[i] = terrain.Grass
	}
	return col
}

func TestFlatColumnOnlyTops(t *testing.T) {
	m, err := Build(flatColumn(4, 10), flat(10))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Quads != 16 || m.Sides != Top {
		t.Fatalf("quads=%d sides=%v, want 16 top", m.Quads, m.Sides)
	}
	if got, want := len(m.Vertices), 16*6*VertexStride; got != want {
		t.Fatalf("got %d floats, want %d", got, want)
	}
	if m.VertexCount() != 96 {
		t.Errorf("vertex count %d", m.VertexCount())
	}
	if m.MinY != 10 || m.MaxY != 10 {
		t.Errorf("y range [%d,%d], want [10,10]", m.MinY, m.MaxY)
	}
}

func TestRaisedCellGetsFourWalls(t *testing.T) {
	col := flatColumn(3, 5)
	col.Heights[1*3+1] = 8

	m, err := Build(col, flat(5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Quads != 9+4 {
		t.Fatalf("quads=%d, want 13", m.Quads)
	}
	if want := Top | Left | Right | Forward | Backward; m.Sides != want {
		t.Errorf("sides=%v, want %v", m.Sides, want)
	}
}

func TestBorderWallsUseNeighborSampler(t *testing.T) {
	// Terrain outside drops away, so every border cell gets an outward wall.
	m, err := Build(flatColumn(4, 10), flat(2))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Quads != 16+4*4 {
		t.Fatalf("quads=%d, want 32", m.Quads)
	}
	if m.MinY != 2 {
		t.Errorf("MinY=%d, want wall foot at 2", m.MinY)
	}
}

func TestNormalsMatchWinding(t *testing.T) {
	col := flatColumn(3, 5)
	col.Heights[4] = 9
	col.Heights[0] = 7
	m, err := Build(col, flat(1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	vert := func(i int) (mgl32.Vec3, mgl32.Vec3) {
		o := i * VertexStride
		v := m.Vertices[o : o+VertexStride]
		return mgl32.Vec3{v[0], v[1], v[2]}, mgl32.Vec3{v[3], v[4], v[5]}
	}
	for tri := 0; tri < m.VertexCount(); tri += 3 {
		p0, n := vert(tri)
		p1, _ := vert(tri + 1)
		p2, _ := vert(tri + 2)
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		if face.Dot(n) <= 0 {
			t.Fatalf("triangle %d winds against its normal %v", tri/3, n)
		}
	}
}

func TestVoidColumnFails(t *testing.T) {
	_, err := Build(&terrain.Column{Void: true}, flat(0))
	if !errors.Is(err, ErrEmptyColumn) {
		t.Fatalf("got %v, want ErrEmptyColumn", err)
	}
	if _, err := Build(nil, flat(0)); !errors.Is(err, ErrEmptyColumn) {
		t.Fatalf("nil column: got %v", err)
	}
}

func TestFactoryBuildsFromGenerator(t *testing.T) {
	gen := terrain.NewGenerator(terrain.Settings{Seed: 7, Border: 1})
	generate := Factory(gen, 8)(0)

	m, err := generate(streaming.Key{X: 1, Z: 0}, mgl32.Vec3{8, 0, 0})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if m.Key != (streaming.Key{X: 1, Z: 0}) || m.Quads < 64 || !m.Sides.Has(Top) {
		t.Fatalf("unexpected mesh key=%v quads=%d sides=%v", m.Key, m.Quads, m.Sides)
	}

	_, err = generate(streaming.Key{X: 5, Z: 0}, mgl32.Vec3{})
	if !errors.Is(err, ErrEmptyColumn) {
		t.Fatalf("beyond border: got %v, want ErrEmptyColumn", err)
	}
}

func TestSidesString(t *testing.T) {
	if s := (Top | Right).String(); s != "top|right" {
		t.Errorf("got %q", s)
	}
	if s := Sides(0).String(); s != "none" {
		t.Errorf("got %q", s)
	}
	if !AllSides.Has(Forward | Bottom) {
		t.Error("AllSides should contain every side")
	}
}

func BenchmarkBuild(b *testing.B) {
	gen := terrain.NewGenerator(terrain.Settings{Seed: 1})
	col, err := gen.Column(streaming.Key{}, 16)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Build(col, gen)
	}
}

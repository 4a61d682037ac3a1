package terrain

import (
	"testing"

	"voxstream/internal/streaming"
)

func TestHeightAtDeterministic(t *testing.T) {
	a := NewGenerator(Settings{Seed: 1337})
	b := a.Clone()
	for x := -40; x < 40; x += 7 {
		for z := -40; z < 40; z += 5 {
			ha, hb := a.HeightAt(x, z), b.HeightAt(x, z)
			if ha != hb {
				t.Fatalf("clone disagrees at (%d,%d): %d vs %d", x, z, ha, hb)
			}
			if ha < 1 || ha > a.MaxHeight() {
				t.Fatalf("height %d at (%d,%d) outside [1,%d]", ha, x, z, a.MaxHeight())
			}
		}
	}
}

func TestSeedChangesTerrain(t *testing.T) {
	a := NewGenerator(Settings{Seed: 1})
	b := NewGenerator(Settings{Seed: 2})
	same := 0
	for x := range 64 {
		if a.HeightAt(x*13, x*7) == b.HeightAt(x*13, x*7) {
			same++
		}
	}
	if same == 64 {
		t.Error("different seeds produced identical terrain")
	}
}

func TestColumnMatchesHeightAt(t *testing.T) {
	g := NewGenerator(Settings{Seed: 99})
	key := streaming.Key{X: -2, Z: 3}

	col, err := g.Column(key, 16)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if col.Void || len(col.Heights) != 256 || len(col.Surface) != 256 {
		t.Fatalf("unexpected column shape: void=%v heights=%d", col.Void, len(col.Heights))
	}
	for lx := range 16 {
		for lz := range 16 {
			h, b := col.At(lx, lz)
			if want := g.HeightAt(key.X*16+lx, key.Z*16+lz); h != want {
				t.Fatalf("height at (%d,%d) = %d, want %d", lx, lz, h, want)
			}
			if b == Air {
				t.Fatalf("surface at (%d,%d) is air", lx, lz)
			}
			if h <= SeaLevel && b != Sand {
				t.Fatalf("surface at height %d should be sand, got %v", h, b)
			}
		}
	}
	lo, hi := col.Range()
	if lo > hi || lo < 1 {
		t.Errorf("range [%d,%d]", lo, hi)
	}
}

func TestColumnBorder(t *testing.T) {
	g := NewGenerator(Settings{Seed: 5, Border: 2})

	col, err := g.Column(streaming.Key{X: 2, Z: -2}, 8)
	if err != nil || col.Void {
		t.Fatalf("edge column should be solid: void=%v err=%v", col.Void, err)
	}
	col, err = g.Column(streaming.Key{X: 3, Z: 0}, 8)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if !col.Void || len(col.Heights) != 0 {
		t.Errorf("column beyond the border should be void")
	}
}

func TestColumnRejectsBadSize(t *testing.T) {
	if _, err := NewGenerator(Settings{}).Column(streaming.Key{}, 0); err == nil {
		t.Error("expected error for zero size")
	}
}

func BenchmarkColumn(b *testing.B) {
	g := NewGenerator(Settings{Seed: 1})
	for i := 0; i < b.N; i++ {
		_, _ = g.Column(streaming.Key{X: i % 32, Z: i / 32}, 16)
	}
}

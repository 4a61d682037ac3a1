package streaming_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/streaming"
)

func TestCellOf(t *testing.T) {
	tests := []struct {
		pos  mgl32.Vec3
		want streaming.Key
	}{
		{mgl32.Vec3{0, 0, 0}, streaming.Key{X: 0, Z: 0}},
		{mgl32.Vec3{15.9, 100, 15.9}, streaming.Key{X: 0, Z: 0}},
		{mgl32.Vec3{16, 0, 32}, streaming.Key{X: 1, Z: 2}},
		{mgl32.Vec3{-0.5, 0, -16}, streaming.Key{X: -1, Z: -1}},
		{mgl32.Vec3{-16.01, 0, 0}, streaming.Key{X: -2, Z: 0}},
	}
	for _, tt := range tests {
		if got := streaming.CellOf(tt.pos, 16); got != tt.want {
			t.Errorf("CellOf(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestKeyDistanceAndOrigin(t *testing.T) {
	a := streaming.Key{X: 0, Z: 0}
	if d := a.DistanceSq(streaming.Key{X: 0, Z: 1}); d != 1 {
		t.Errorf("distance to (0,1) = %d, want 1", d)
	}
	if d := a.DistanceSq(streaming.Key{X: 2, Z: 0}); d != 4 {
		t.Errorf("distance to (2,0) = %d, want 4", d)
	}
	if d := a.DistanceSq(streaming.Key{X: -3, Z: 4}); d != 25 {
		t.Errorf("distance to (-3,4) = %d, want 25", d)
	}
	if o := (streaming.Key{X: -2, Z: 3}).Origin(16); o != (mgl32.Vec3{-32, 0, 48}) {
		t.Errorf("origin = %v", o)
	}
	if s := (streaming.Key{X: -2, Z: 3}).String(); s != "(-2,3)" {
		t.Errorf("String = %q", s)
	}
}

func TestWantedSet(t *testing.T) {
	center := streaming.Key{X: 5, Z: -3}

	if got := streaming.WantedSet(center, 0); len(got) != 1 || got[0] != center {
		t.Fatalf("radius 0: got %v, want only %v", got, center)
	}

	r1 := streaming.WantedSet(center, 1)
	if len(r1) != 9 {
		t.Fatalf("radius 1: got %d keys, want the full 3x3 block", len(r1))
	}

	for r := 2; r <= 8; r++ {
		keys := streaming.WantedSet(center, r)
		seen := map[streaming.Key]bool{}
		for _, k := range keys {
			if seen[k] {
				t.Fatalf("radius %d: duplicate key %v", r, k)
			}
			seen[k] = true
			if d := k.DistanceSq(center); d > r*(r+1) {
				t.Fatalf("radius %d: key %v outside footprint (d²=%d)", r, k, d)
			}
		}
		// Axis extremes are always in, box corners never.
		if !seen[streaming.Key{X: center.X + r, Z: center.Z}] {
			t.Errorf("radius %d: missing axis key", r)
		}
		if seen[streaming.Key{X: center.X + r, Z: center.Z + r}] {
			t.Errorf("radius %d: box corner should be excluded", r)
		}
	}

	if got := streaming.WantedSet(center, -4); len(got) != 1 {
		t.Errorf("negative radius should behave as 0, got %d keys", len(got))
	}
}

package terrain

import (
	"math"
	"math/rand"
	"testing"
)

// TestHash2Deterministic verifies hash2 is stable and sensitive to each input
func TestHash2Deterministic(t *testing.T) {
	if hash2(3, 4, 42) != hash2(3, 4, 42) {
		t.Fatal("hash2 not deterministic")
	}
	if hash2(3, 4, 42) == hash2(4, 3, 42) {
		t.Error("hash2 should differ when axes are swapped")
	}
	if hash2(3, 4, 42) == hash2(3, 4, 43) {
		t.Error("hash2 should differ for different seeds")
	}
}

// TestValueNoiseRange verifies valueNoise and fbm stay in [0,1]
func TestValueNoiseRange(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	for range 1000 {
		x := rng.Float64()*400 - 200
		z := rng.Float64()*400 - 200
		if v := valueNoise(x, z, 7); v < 0 || v > 1 {
			t.Fatalf("valueNoise(%f, %f) = %f out of range", x, z, v)
		}
		if v := fbm(x, z, 7, 4, 0.5, 2); v < 0 || v > 1 {
			t.Fatalf("fbm(%f, %f) = %f out of range", x, z, v)
		}
	}
}

// TestValueNoiseContinuity verifies nearby samples stay close
func TestValueNoiseContinuity(t *testing.T) {
	v1 := valueNoise(10.0, 5.0, 1)
	v2 := valueNoise(10.01, 5.0, 1)
	if diff := math.Abs(v1 - v2); diff >= 0.1 {
		t.Errorf("valueNoise jumped by %f over 0.01", diff)
	}
}

func TestFBMZeroOctaves(t *testing.T) {
	if v := fbm(1, 1, 1, 0, 0.5, 2); v != 0 {
		t.Errorf("fbm with no octaves = %f, want 0", v)
	}
}

package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	sig := DeterministicSine(1000, 48000, 0.5, 48)

	if len(sig) != 48 {
		t.Fatalf("length = %d, want 48", len(sig))
	}

	// Quarter period of 1 kHz at 48 kHz is 12 samples.
	if math.Abs(sig[12]-0.5) > 1e-12 {
		t.Fatalf("sig[12] = %v, want 0.5", sig[12])
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(7, 0.8, 128)
	b := DeterministicNoise(7, 0.8, 128)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs: %v vs %v", i, a[i], b[i])
		}

		if math.Abs(a[i]) > 0.8 {
			t.Fatalf("index %d: %v exceeds amplitude", i, a[i])
		}
	}
}

func TestImpulse(t *testing.T) {
	sig := Impulse(8, 3, 0.25)

	for i, v := range sig {
		want := 0.0
		if i == 3 {
			want = 0.25
		}

		if v != want {
			t.Fatalf("sig[%d] = %v, want %v", i, v, want)
		}
	}

	if out := Impulse(4, 9, 1); out[0] != 0 || out[3] != 0 {
		t.Fatal("out-of-range impulse should be silent")
	}
}

func TestInterleaveChannelRoundTrip(t *testing.T) {
	left := []float64{1, 2, 3}
	right := []float64{-1, -2, -3}

	buf := Interleave(left, right)
	want := []float32{1, -1, 2, -2, 3, -3}

	RequireBitIdentical(t, buf, want)
	RequireSliceNearlyEqual(t, Channel(buf, 2, 0), left, 0)
	RequireSliceNearlyEqual(t, Channel(buf, 2, 1), right, 0)
}

func TestFrames(t *testing.T) {
	frames := Frames([]float64{1, 2, 3}, []float64{4, 5})

	if len(frames) != 2 {
		t.Fatalf("len = %d, want 2", len(frames))
	}

	if frames[1] != [2]float64{2, 5} {
		t.Fatalf("frames[1] = %v", frames[1])
	}
}

func TestDC(t *testing.T) {
	for i, v := range DC(-0.5, 5) {
		if v != -0.5 {
			t.Fatalf("sig[%d] = %v, want -0.5", i, v)
		}
	}
}

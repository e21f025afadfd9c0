package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireBitIdentical fails t unless got and want hold the same float32
// bit patterns. NaN payloads are compared too.
func RequireBitIdentical(t *testing.T, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.Float32bits(got[i]) != math.Float32bits(want[i]) {
			t.Fatalf("index %d: got %v (%#08x), want %v (%#08x)",
				i, got[i], math.Float32bits(got[i]), want[i], math.Float32bits(want[i]))
		}
	}
}

// RequireUnitRange fails t if any sample is non-finite or outside [-1, 1].
func RequireUnitRange(t *testing.T, buf []float32) {
	t.Helper()
	for i, v := range buf {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < -1 || f > 1 {
			t.Fatalf("index %d: sample %v outside [-1, 1]", i, v)
		}
	}
}

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

// RequireNear fails t if |got-want| > eps. Two infinities of the same sign
// compare equal.
func RequireNear(t *testing.T, what string, got, want, eps float64) {
	t.Helper()

	if math.IsInf(want, 0) && got == want {
		return
	}

	if math.IsNaN(got) || math.Abs(got-want) > eps {
		t.Fatalf("%s: got %.4f, want %.4f +/- %v", what, got, want, eps)
	}
}

// RequireNegInf fails t unless v is negative infinity.
func RequireNegInf(t *testing.T, what string, v float64) {
	t.Helper()

	if !math.IsInf(v, -1) {
		t.Fatalf("%s: got %v, want -Inf", what, v)
	}
}

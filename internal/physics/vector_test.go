package physics

import (
	"math"
	"testing"
)

func TestVectorDot(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: 5, Z: 6}
	if got := a.Dot(b); got != 32 {
		t.Errorf("expected dot product 32, got %v", got)
	}
}

func TestVectorCross(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: 5, Z: 6}
	got := a.Cross(b)
	want := Vector3{X: -3, Y: 6, Z: -3}
	if got != want {
		t.Errorf("expected cross product %v, got %v", want, got)
	}
}

func TestVectorNormalize(t *testing.T) {
	testCases := []struct {
		name string
		v    Vector3
	}{
		{"unit x", Vector3{X: 1}},
		{"diagonal", Vector3{X: 1, Y: 2, Z: 3}},
		{"large", Vector3{X: 1e11, Y: -3e10, Z: 7e9}},
		{"small but valid", Vector3{X: 1e-6, Y: 2e-6}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mag := tc.v.Normalize().Magnitude()
			if math.Abs(mag-1) > 1e-12 {
				t.Errorf("normalized magnitude = %v, want 1", mag)
			}
		})
	}
}

func TestVectorNormalizeDegenerate(t *testing.T) {
	for _, v := range []Vector3{{}, {X: 1e-16, Y: 1e-16}} {
		if got := v.Normalize(); got != (Vector3{}) {
			t.Errorf("degenerate vector %v normalized to %v, want zero", v, got)
		}
	}
}

func TestVectorArithmetic(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: -1, Y: 0.5, Z: 2}

	if got := a.Add(b); got != (Vector3{X: 0, Y: 2.5, Z: 5}) {
		t.Errorf("unexpected sum %v", got)
	}
	if got := a.Sub(b); got != (Vector3{X: 2, Y: 1.5, Z: 1}) {
		t.Errorf("unexpected difference %v", got)
	}
	if got := a.Scale(2); got != (Vector3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("unexpected scale %v", got)
	}
}

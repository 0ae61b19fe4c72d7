package grid

import (
	"math"
	"testing"
)

func offsets(r int) []IVec2 {
	var out []IVec2
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			out = append(out, IVec2{x, y})
		}
	}
	return out
}

func TestRotateZeroIsIdentity(t *testing.T) {
	for _, v := range offsets(12) {
		if got := Rotate(v, 0); got != v {
			t.Fatalf("Rotate(%v, 0) = %v", v, got)
		}
		if got := Unrotate(v, 0); got != v {
			t.Fatalf("Unrotate(%v, 0) = %v", v, got)
		}
	}
}

func TestQuadrantRotate(t *testing.T) {
	v := IVec2{3, 1}
	tests := []struct {
		q    int
		want IVec2
	}{
		{0, IVec2{3, 1}},
		{1, IVec2{-1, 3}},
		{2, IVec2{-3, -1}},
		{3, IVec2{1, -3}},
		{4, IVec2{3, 1}},
		{-1, IVec2{1, -3}},
	}
	for _, tt := range tests {
		if got := QuadrantRotate(v, tt.q); got != tt.want {
			t.Errorf("QuadrantRotate(%v, %d) = %v, want %v", v, tt.q, got, tt.want)
		}
	}
}

func TestQuadrant(t *testing.T) {
	tests := []struct {
		angle float64
		want  int
	}{
		{0, 0},
		{math.Pi / 2, 1},
		{math.Pi, 2},
		{-math.Pi / 2, 3},
		{0.7, 0},
		{0.9, 1},
		{2 * math.Pi, 0},
	}
	for _, tt := range tests {
		if got := Quadrant(tt.angle); got != tt.want {
			t.Errorf("Quadrant(%v) = %d, want %d", tt.angle, got, tt.want)
		}
	}
}

func TestRotateRightAnglesExact(t *testing.T) {
	for _, v := range offsets(6) {
		if got, want := Rotate(v, math.Pi/2), (IVec2{-v.Y, v.X}); got != want {
			t.Fatalf("Rotate(%v, pi/2) = %v, want %v", v, got, want)
		}
		if got := Rotate(v, math.Pi); got != v.Neg() {
			t.Fatalf("Rotate(%v, pi) = %v", v, got)
		}
	}
}

func TestUnrotateInvertsRotate(t *testing.T) {
	angles := []float64{0.1, -0.3, 0.785, 1.2, 2.9, -2.2, 7.5}
	for _, a := range angles {
		for _, v := range offsets(15) {
			if got := Unrotate(Rotate(v, a), a); got != v {
				t.Fatalf("angle %v: Unrotate(Rotate(%v)) = %v", a, v, got)
			}
		}
	}
}

func TestRotateIsBijection(t *testing.T) {
	for _, a := range []float64{0.2, 0.6, -1.1, 2.4} {
		seen := make(map[IVec2]IVec2)
		for _, v := range offsets(10) {
			r := Rotate(v, a)
			if prev, dup := seen[r]; dup {
				t.Fatalf("angle %v: %v and %v both map to %v", a, prev, v, r)
			}
			seen[r] = v
		}
	}
}

func TestRotateApproximatesContinuous(t *testing.T) {
	a := 0.5
	for _, v := range offsets(8) {
		got := Rotate(v, a).Float()
		want := v.Float().Rotated(a)
		if got.Sub(want).Len() > 1.5 {
			t.Errorf("Rotate(%v, %v) = %v, continuous %v", v, a, got, want)
		}
	}
}

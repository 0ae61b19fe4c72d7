package grid

import "math"

const quarterTurn = math.Pi / 2

// Quadrant returns the nearest multiple of 90 degrees to angle, in [0,4).
func Quadrant(angle float64) int {
	q, _ := split(angle)
	return mod(q, 4)
}

// split decomposes angle into k quarter turns plus a residual in [-pi/4, pi/4].
// k is left unreduced so that split(-a) is exactly the negation of split(a).
func split(angle float64) (int, float64) {
	k := math.Round(angle / quarterTurn)
	return int(k), angle - k*quarterTurn
}

// QuadrantRotate rotates v by q quarter turns counter-clockwise. Exact.
func QuadrantRotate(v IVec2, q int) IVec2 {
	q = mod(q, 4)
	if q%2 == 1 {
		v = IVec2{-v.Y, v.X}
	}
	if q >= 2 {
		v = v.Neg()
	}
	return v
}

// SkewRotate rotates v by a small angle using three integer shears
// (x += ya, y += xb, x += ya with a = -tan(angle/2), b = sin(angle)).
// Every shear is a bijection on integer offsets, so the result is too.
func SkewRotate(v IVec2, angle float64) IVec2 {
	if angle == 0 {
		return v
	}
	a := -math.Tan(angle / 2)
	b := math.Sin(angle)
	x, y := v.X, v.Y
	x += shear(y, a)
	y += shear(x, b)
	x += shear(y, a)
	return IVec2{x, y}
}

// shear rounds half away from zero, so shear(-n, f) == -shear(n, f)
// and SkewRotate(., -angle) undoes SkewRotate(., angle) exactly.
func shear(n int, f float64) int {
	return int(math.Round(float64(n) * f))
}

// Rotate maps an object-local offset to a world offset at angle.
func Rotate(v IVec2, angle float64) IVec2 {
	k, r := split(angle)
	return QuadrantRotate(SkewRotate(v, r), k)
}

// Unrotate is the exact inverse of Rotate for the same angle.
func Unrotate(v IVec2, angle float64) IVec2 {
	k, r := split(angle)
	return SkewRotate(QuadrantRotate(v, -k), -r)
}

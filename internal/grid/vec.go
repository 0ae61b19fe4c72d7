package grid

import (
	"fmt"
	"math"
)

// IVec2 is an integer grid coordinate or offset.
type IVec2 struct {
	X, Y int
}

func (v IVec2) Add(o IVec2) IVec2 { return IVec2{v.X + o.X, v.Y + o.Y} }
func (v IVec2) Sub(o IVec2) IVec2 { return IVec2{v.X - o.X, v.Y - o.Y} }
func (v IVec2) Neg() IVec2        { return IVec2{-v.X, -v.Y} }
func (v IVec2) LenSq() int        { return v.X*v.X + v.Y*v.Y }
func (v IVec2) Float() Vec2       { return Vec2{float64(v.X), float64(v.Y)} }

func (v IVec2) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

// Vec2 is a continuous 2D vector.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Neg() Vec2            { return Vec2{-v.X, -v.Y} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) LenSq() float64       { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64         { return math.Sqrt(v.LenSq()) }
func (v Vec2) Perp() Vec2           { return Vec2{-v.Y, v.X} }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }
func (v Vec2) String() string       { return fmt.Sprintf("(%.4f,%.4f)", v.X, v.Y) }
func (v Vec2) IsValid() bool        { return !badFloat(v.X) && !badFloat(v.Y) }

// Round maps a position to the cell containing it. Halves round up, so
// shifting v by a whole grid period shifts the cell by the same period.
func (v Vec2) Round() IVec2 {
	return IVec2{int(math.Floor(v.X + 0.5)), int(math.Floor(v.Y + 0.5))}
}

// CrossScalar returns w x r for a scalar angular velocity w.
func CrossScalar(w float64, r Vec2) Vec2 { return Vec2{-w * r.Y, w * r.X} }

func badFloat(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }

// Normalize returns the unit vector along v and false when v is zero.
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Len()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Rotated rotates v counter-clockwise by angle radians.
func (v Vec2) Rotated(angle float64) Vec2 {
	if angle == 0 {
		return v
	}
	s, c := math.Sincos(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

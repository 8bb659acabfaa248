package sim

import "math"

// Vec3 is a 3D vector. X/Z span the horizontal arena plane, Y points up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LenSq returns the squared length of v.
func (v Vec3) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len returns the length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// DistSq returns the squared distance between v and o.
func (v Vec3) DistSq(o Vec3) float64 {
	return v.Sub(o).LenSq()
}

// Dist returns the distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return math.Sqrt(v.DistSq(o))
}

// HorizontalDistSq returns the squared distance between v and o projected
// onto the X/Z plane. Sanctuary and entrance checks ignore height.
func (v Vec3) HorizontalDistSq(o Vec3) float64 {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return dx*dx + dz*dz
}

// Normalized returns the unit vector in the direction of v.
// Reports false for degenerate (near-zero) input so callers can substitute
// a fallback direction instead of propagating NaN.
func (v Vec3) Normalized() (Vec3, bool) {
	lenSq := v.LenSq()
	if lenSq < 1e-12 {
		return Vec3{}, false
	}
	inv := 1.0 / math.Sqrt(lenSq)
	return v.Scale(inv), true
}

// ClampLen limits the magnitude of v to limit, scaling uniformly.
func (v Vec3) ClampLen(limit float64) Vec3 {
	if limit <= 0 {
		return v
	}
	lenSq := v.LenSq()
	if lenSq <= limit*limit {
		return v
	}
	return v.Scale(limit / math.Sqrt(lenSq))
}

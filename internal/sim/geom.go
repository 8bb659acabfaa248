package sim

import "math"

// ShapeKind discriminates the collision shape attached to a physical entity.
// Every entity carries an explicit shape; there is no inference from which
// fields happen to be set.
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

// Shape is a tagged collision shape variant.
// Radius is valid for ShapeSphere, Half for ShapeBox.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Half   Vec3
}

// SphereShape returns a sphere shape with the given radius.
func SphereShape(radius float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

// BoxShape returns a box shape with the given half-extents.
func BoxShape(half Vec3) Shape {
	return Shape{Kind: ShapeBox, Half: half}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// BoundsAt returns the world-space AABB of the shape centered at pos.
// Sphere bounds are center ± radius per axis, box bounds center ± half-extent.
func (s Shape) BoundsAt(pos Vec3) AABB {
	switch s.Kind {
	case ShapeSphere:
		r := Vec3{s.Radius, s.Radius, s.Radius}
		return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
	default:
		return AABB{Min: pos.Sub(s.Half), Max: pos.Add(s.Half)}
	}
}

// Overlaps reports whether two AABBs overlap on all three axes.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y && a.Max.Y > b.Min.Y &&
		a.Min.Z < b.Max.Z && a.Max.Z > b.Min.Z
}

// Contains reports whether the point p lies inside the box.
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// SpheresOverlap reports whether two spheres intersect.
// True iff the distance between centers is less than the sum of radii.
func SpheresOverlap(a Vec3, ra float64, b Vec3, rb float64) bool {
	sum := ra + rb
	return a.DistSq(b) < sum*sum
}

// SegmentPointDistSq returns the squared distance from point p to the
// segment a→b. The projection of p onto the segment is clamped to [0, |ab|].
func SegmentPointDistSq(a, b, p Vec3) float64 {
	ab := b.Sub(a)
	lenSq := ab.LenSq()
	if lenSq < 1e-12 {
		return p.DistSq(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Add(ab.Scale(t))
	return p.DistSq(closest)
}

// SegmentHitsSphere reports whether the segment a→b passes within radius of
// the sphere center. Used for swept projectile checks so fast snowballs
// cannot tunnel through a target inside one tick.
func SegmentHitsSphere(a, b, center Vec3, radius float64) bool {
	return SegmentPointDistSq(a, b, center) < radius*radius
}

// ResolveAABB pushes a dynamic body out of a static box along the axis of
// least penetration and zeroes the velocity component on that axis.
// Penetration per axis is min(maxA-minB, maxB-minA). An upward vertical push
// additionally grounds the body.
func ResolveAABB(body *DynamicBody, dyn, static AABB) {
	penX := math.Min(dyn.Max.X-static.Min.X, static.Max.X-dyn.Min.X)
	penY := math.Min(dyn.Max.Y-static.Min.Y, static.Max.Y-dyn.Min.Y)
	penZ := math.Min(dyn.Max.Z-static.Min.Z, static.Max.Z-dyn.Min.Z)

	dynCenterX := (dyn.Min.X + dyn.Max.X) * 0.5
	dynCenterY := (dyn.Min.Y + dyn.Max.Y) * 0.5
	dynCenterZ := (dyn.Min.Z + dyn.Max.Z) * 0.5
	staticCenterX := (static.Min.X + static.Max.X) * 0.5
	staticCenterY := (static.Min.Y + static.Max.Y) * 0.5
	staticCenterZ := (static.Min.Z + static.Max.Z) * 0.5

	switch {
	case penX <= penY && penX <= penZ:
		if dynCenterX < staticCenterX {
			body.Pos.X -= penX
		} else {
			body.Pos.X += penX
		}
		body.Vel.X = 0
	case penZ <= penX && penZ <= penY:
		if dynCenterZ < staticCenterZ {
			body.Pos.Z -= penZ
		} else {
			body.Pos.Z += penZ
		}
		body.Vel.Z = 0
	default:
		if dynCenterY < staticCenterY {
			body.Pos.Y -= penY
		} else {
			body.Pos.Y += penY
			body.Grounded = true
		}
		body.Vel.Y = 0
	}
}

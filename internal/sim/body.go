package sim

// DynamicBody is the mutable physical state shared by agents and snowballs.
// Pos is the bottom-center of the entity; the collision sphere sits at
// Pos + Height/2 on the Y axis.
type DynamicBody struct {
	Pos      Vec3
	Vel      Vec3
	Shape    Shape
	Height   float64
	Grounded bool
}

// Center returns the center of the body's collision sphere.
func (b *DynamicBody) Center() Vec3 {
	return Vec3{b.Pos.X, b.Pos.Y + b.Height*0.5, b.Pos.Z}
}

// Bounds returns the world-space AABB of the body.
func (b *DynamicBody) Bounds() AABB {
	return b.Shape.BoundsAt(b.Center())
}

// StaticBody is an immovable box collider (arena walls, igloo footprints).
type StaticBody struct {
	Pos   Vec3
	Shape Shape
}

// Bounds returns the world-space AABB of the static body.
func (s *StaticBody) Bounds() AABB {
	return s.Shape.BoundsAt(s.Pos)
}

// Integrate applies gravity and advances the body by its velocity.
// Gravity pulls airborne bodies down; crossing the ground plane at y=0
// lands the body, zeroing vertical velocity and setting Grounded.
// dt must be pre-clamped by the caller (the engine caps it at 100 ms).
func Integrate(b *DynamicBody, dt, gravity float64) {
	if !b.Grounded {
		b.Vel.Y -= gravity * dt
	}

	b.Pos = b.Pos.Add(b.Vel.Scale(dt))

	if b.Pos.Y <= 0 {
		b.Pos.Y = 0
		b.Vel.Y = 0
		b.Grounded = true
	}
}

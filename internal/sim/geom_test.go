package sim

import (
	"math"
	"testing"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		name   string
		in     Vec3
		wantOK bool
	}{
		{"unit x", Vec3{X: 1}, true},
		{"arbitrary", Vec3{X: 3, Y: 4, Z: 12}, true},
		{"zero", Vec3{}, false},
		{"near zero", Vec3{X: 1e-9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, ok := tt.in.Normalized()
			if ok != tt.wantOK {
				t.Fatalf("Normalized ok = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				if l := unit.Len(); math.Abs(l-1) > 1e-9 {
					t.Errorf("unit length = %v, want 1", l)
				}
			}
		})
	}
}

func TestSpheresOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    Vec3
		ra   float64
		b    Vec3
		rb   float64
		want bool
	}{
		{"overlapping", Vec3{}, 1, Vec3{X: 1.5}, 1, true},
		{"touching is no hit", Vec3{}, 1, Vec3{X: 2}, 1, false},
		{"separate", Vec3{}, 0.5, Vec3{X: 5}, 0.5, false},
		{"contained", Vec3{}, 2, Vec3{X: 0.1}, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpheresOverlap(tt.a, tt.ra, tt.b, tt.rb); got != tt.want {
				t.Errorf("SpheresOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentHitsSphere(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Vec3
		center Vec3
		radius float64
		want   bool
	}{
		{"through center", Vec3{X: -5}, Vec3{X: 5}, Vec3{}, 0.5, true},
		{"passes beside", Vec3{X: -5, Z: 2}, Vec3{X: 5, Z: 2}, Vec3{}, 0.5, false},
		{"grazes inside radius", Vec3{X: -5, Z: 0.4}, Vec3{X: 5, Z: 0.4}, Vec3{}, 0.5, true},
		{"short of target", Vec3{X: -5}, Vec3{X: -2}, Vec3{}, 0.5, false},
		{"degenerate segment on target", Vec3{X: 0.1}, Vec3{X: 0.1}, Vec3{}, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentHitsSphere(tt.a, tt.b, tt.center, tt.radius); got != tt.want {
				t.Errorf("SegmentHitsSphere = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShapeBounds(t *testing.T) {
	sphere := SphereShape(0.5)
	b := sphere.BoundsAt(Vec3{X: 1, Y: 2, Z: 3})
	if b.Min.X != 0.5 || b.Max.X != 1.5 || b.Min.Y != 1.5 || b.Max.Y != 2.5 {
		t.Errorf("sphere bounds wrong: %+v", b)
	}

	box := BoxShape(Vec3{X: 1, Y: 2, Z: 3})
	b = box.BoundsAt(Vec3{})
	if b.Min.X != -1 || b.Max.Y != 2 || b.Min.Z != -3 {
		t.Errorf("box bounds wrong: %+v", b)
	}
}

func TestResolveAABBPushesLeastPenetration(t *testing.T) {
	// Sphere body just inside a wall face; X is the smallest penetration.
	body := DynamicBody{
		Pos:    Vec3{X: 29.9},
		Vel:    Vec3{X: 3},
		Shape:  SphereShape(0.5),
		Height: 1.8,
	}
	wall := BoxShape(Vec3{X: 0.5, Y: 1.5, Z: 32}).BoundsAt(Vec3{X: 30.5, Y: 1.5})

	dyn := body.Bounds()
	if !dyn.Overlaps(wall) {
		t.Fatal("expected initial overlap")
	}

	ResolveAABB(&body, dyn, wall)

	if body.Pos.X >= 29.9 {
		t.Errorf("body not pushed out, x = %v", body.Pos.X)
	}
	if body.Vel.X != 0 {
		t.Errorf("x velocity not zeroed: %v", body.Vel.X)
	}
	if body.Bounds().Overlaps(wall) {
		t.Error("still overlapping after resolution")
	}
}

func TestResolveAABBLandingGrounds(t *testing.T) {
	// Body sunk into the top of a platform from above.
	body := DynamicBody{
		Pos:    Vec3{Y: 1.8}, // center at 2.7, bottom of collider at 2.2
		Vel:    Vec3{Y: -4},
		Shape:  SphereShape(0.5),
		Height: 1.8,
	}
	platform := BoxShape(Vec3{X: 5, Y: 1.25, Z: 5}).BoundsAt(Vec3{Y: 1.25})

	dyn := body.Bounds()
	if !dyn.Overlaps(platform) {
		t.Fatal("expected initial overlap")
	}

	ResolveAABB(&body, dyn, platform)

	if !body.Grounded {
		t.Error("upward push should ground the body")
	}
	if body.Vel.Y != 0 {
		t.Errorf("y velocity not zeroed: %v", body.Vel.Y)
	}
}

func TestIntegrate(t *testing.T) {
	body := DynamicBody{
		Pos:   Vec3{Y: 2},
		Vel:   Vec3{X: 1},
		Shape: SphereShape(0.15),
	}

	Integrate(&body, 0.1, 10)

	if body.Vel.Y >= 0 {
		t.Error("gravity should pull velocity down for airborne bodies")
	}
	if body.Pos.X <= 0 {
		t.Error("position should advance with velocity")
	}

	// Drive into the ground: position clamps, body grounds.
	body.Vel.Y = -100
	Integrate(&body, 0.5, 10)
	if body.Pos.Y != 0 {
		t.Errorf("ground clamp failed, y = %v", body.Pos.Y)
	}
	if !body.Grounded {
		t.Error("body should be grounded at y=0")
	}
	if body.Vel.Y != 0 {
		t.Error("vertical velocity should zero on landing")
	}
}

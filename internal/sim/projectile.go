package sim

import "fmt"

// SnowballLifetime is the time budget for a thrown snowball in seconds.
// The distance budget (travel range) comes from the thrower's stats.
const SnowballLifetime = 5.0

// Projectile is a thrown snowball. It carries both a lifetime budget and a
// travel-distance budget; whichever runs out first removes it. Hit is
// terminal: once set the projectile never touches an agent's health again
// and is removed when the tick's collision pass commits.
type Projectile struct {
	ID      string
	OwnerID string

	Body DynamicBody

	Damage      int
	Life        float64 // remaining seconds
	MaxDistance float64 // travel budget
	Spawn       Vec3    // for distance accounting

	prevPos Vec3 // center before this tick's integration, for swept checks
	Hit     bool
	expired bool // budget exhausted this tick, removed at commit
}

func newProjectile(owner *Agent, dir Vec3, seq uint64) *Projectile {
	// Spawn at the owner's throwing hand: sphere center pushed out past
	// the owner's radius so the ball cannot hit the thrower's collider.
	start := owner.Body.Center().Add(dir.Scale(owner.Body.Shape.Radius + owner.BallRadius + 0.1))

	return &Projectile{
		ID:      fmt.Sprintf("ball_%d_%s", seq, owner.ID),
		OwnerID: owner.ID,
		Body: DynamicBody{
			Pos:   start,
			Vel:   dir.Scale(owner.ThrowSpeed),
			Shape: SphereShape(owner.BallRadius),
		},
		Damage:      owner.Damage,
		Life:        SnowballLifetime,
		MaxDistance: owner.ThrowRange,
		Spawn:       start,
		prevPos:     start,
	}
}

// advance integrates the snowball one tick and decrements its budgets.
// Returns false when the projectile should be removed.
func (p *Projectile) advance(dt, gravity float64) bool {
	p.prevPos = p.Body.Pos
	Integrate(&p.Body, dt, gravity)

	p.Life -= dt
	if p.Life <= 0 {
		return false
	}
	if p.Body.Pos.DistSq(p.Spawn) > p.MaxDistance*p.MaxDistance {
		return false
	}
	// A snowball resting on the ground is spent.
	if p.Body.Grounded {
		return false
	}
	return true
}

// hits reports a discrete sphere-sphere overlap with the agent's collider.
// Ownership, liveness and sanctuary gating are the resolver's job.
func (p *Projectile) hits(a *Agent) bool {
	return SpheresOverlap(p.Body.Pos, p.Body.Shape.Radius, a.Body.Center(), a.Body.Shape.Radius)
}

// sweptHits tests the segment from the previous to the current position
// against the agent's collider, catching targets a fast ball skipped past
// between discrete checks.
func (p *Projectile) sweptHits(a *Agent) bool {
	combined := p.Body.Shape.Radius + a.Body.Shape.Radius
	return SegmentHitsSphere(p.prevPos, p.Body.Pos, a.Body.Center(), combined)
}

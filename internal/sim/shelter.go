package sim

// Igloo geometry. The entrance sits on the face pointing at the arena
// center so agents naturally run home through it.
var iglooHalf = Vec3{X: 1.5, Y: 1.0, Z: 1.5}

const (
	entranceHalfWidth  = 0.7
	entranceHalfHeight = 0.9
)

// Shelter is an agent's igloo: a static footprint box anchoring a sanctuary
// radius and the stock-replenishment trigger. One per agent per round.
type Shelter struct {
	OwnerID string

	Pos      Vec3 // anchor point, bottom-center of the footprint
	Half     Vec3
	Entrance Vec3 // point on the entrance face, at ground level

	SanctuaryRadius float64
}

// Bounds returns the igloo footprint box.
func (s *Shelter) Bounds() AABB {
	center := Vec3{s.Pos.X, s.Pos.Y + s.Half.Y, s.Pos.Z}
	return BoxShape(s.Half).BoundsAt(center)
}

// InSanctuary reports whether the point lies inside this shelter's
// sanctuary: squared horizontal distance to the anchor within radius².
func (s *Shelter) InSanctuary(p Vec3) bool {
	return p.HorizontalDistSq(s.Pos) <= s.SanctuaryRadius*s.SanctuaryRadius
}

// AtEntrance reports whether the body position is within the entrance
// region: horizontal distance to the entrance point inside the half-width
// and vertical offset inside the half-height.
func (s *Shelter) AtEntrance(p Vec3) bool {
	if p.HorizontalDistSq(s.Entrance) > entranceHalfWidth*entranceHalfWidth {
		return false
	}
	dy := p.Y - s.Entrance.Y
	if dy < 0 {
		dy = -dy
	}
	return dy <= entranceHalfHeight
}

// newShelter builds an igloo at pos with its entrance facing the arena
// center (the origin).
func newShelter(ownerID string, pos Vec3, sanctuaryRadius float64) *Shelter {
	toCenter, ok := Vec3{X: -pos.X, Z: -pos.Z}.Normalized()
	if !ok {
		toCenter = Vec3{X: 1}
	}
	entrance := pos.Add(toCenter.Scale(iglooHalf.X))
	entrance.Y = 0

	return &Shelter{
		OwnerID:         ownerID,
		Pos:             pos,
		Half:            iglooHalf,
		Entrance:        entrance,
		SanctuaryRadius: sanctuaryRadius,
	}
}
